package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Humanoidear/PR2-Frontend-Backend/internal/coordinator"
	"github.com/Humanoidear/PR2-Frontend-Backend/internal/infrastructure/config"
	"github.com/Humanoidear/PR2-Frontend-Backend/internal/infrastructure/logging"
	"github.com/Humanoidear/PR2-Frontend-Backend/internal/inventory"
)

const (
	testPassword  = "operator-password"
	testJWTSecret = "test-secret-key-at-least-32-characters-long"
)

// memLedger is a minimal in-memory inventory.Repository for API tests.
type memLedger struct {
	records map[string]*inventory.Record
}

func newMemLedger(records ...inventory.Record) *memLedger {
	l := &memLedger{records: make(map[string]*inventory.Record)}
	for i := range records {
		r := records[i]
		l.records[r.ID] = &r
	}
	return l
}

func (l *memLedger) GetByID(_ context.Context, id string) (*inventory.Record, error) {
	r, ok := l.records[id]
	if !ok {
		return nil, inventory.ErrRecordNotFound
	}
	cpy := *r
	return &cpy, nil
}

func (l *memLedger) GetByReadingCode(_ context.Context, code string) (*inventory.Record, error) {
	for _, r := range l.records {
		if r.ReadingCode == code {
			cpy := *r
			return &cpy, nil
		}
	}
	return nil, inventory.ErrRecordNotFound
}

func (l *memLedger) ListBySite(_ context.Context, site string) ([]inventory.Record, error) {
	var out []inventory.Record
	for _, r := range l.records {
		if r.Site == site {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (l *memLedger) OccupiedPositions(_ context.Context, site string) (map[int]bool, error) {
	occupied := make(map[int]bool)
	for _, r := range l.records {
		if r.Site == site && r.Location != nil {
			occupied[*r.Location] = true
		}
	}
	return occupied, nil
}

func (l *memLedger) Create(_ context.Context, record *inventory.Record) error {
	if _, ok := l.records[record.ID]; ok {
		return inventory.ErrRecordExists
	}
	cpy := *record
	l.records[record.ID] = &cpy
	return nil
}

func (l *memLedger) StoreAt(_ context.Context, id string, position int, receivedAt time.Time) error {
	r, ok := l.records[id]
	if !ok {
		return inventory.ErrRecordNotFound
	}
	if r.Location != nil {
		return inventory.ErrAlreadyStored
	}
	r.Location = &position
	r.ReceivedAt = &receivedAt
	return nil
}

func (l *memLedger) Delete(_ context.Context, id string) error {
	if _, ok := l.records[id]; !ok {
		return inventory.ErrRecordNotFound
	}
	delete(l.records, id)
	return nil
}

// nullGateway swallows publishes; API tests exercise HTTP semantics, not the bus.
type nullGateway struct{}

func (nullGateway) Publish(string, []byte, byte, bool) error { return nil }
func (nullGateway) IsConnected() bool                        { return false }

func testServer(t *testing.T, ledger inventory.Repository) *Server {
	t.Helper()

	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")

	coord := coordinator.New(coordinator.Config{
		Slots:                   5,
		DefaultEntranceQuantity: 12,
		DefaultExitQuantity:     10,
		AutomatedSite:           "Vera",
		DefaultSite:             "Vera",
	}, ledger, nullGateway{})

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.APITimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		WS: config.WebSocketConfig{MaxMessageSize: 8192},
		Security: config.SecurityConfig{
			JWT: config.JWTConfig{
				Secret:         testJWTSecret,
				AccessTokenTTL: 15,
			},
			OperatorPassword: testPassword,
		},
		Logger:      log,
		Coordinator: coord,
		Ledger:      ledger,
		DefaultSite: "Vera",
		Version:     "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	srv.hub = NewHub(srv.wsCfg, log)
	return srv
}

// login obtains a bearer token through the login endpoint.
func login(t *testing.T, router http.Handler) string {
	t.Helper()

	body := `{"password":"` + testPassword + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("login returned empty token")
	}
	return resp.AccessToken
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv := testServer(t, newMemLedger())
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"password":"wrong"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ledger := newMemLedger(inventory.Record{ID: "42", Site: "Vera"})
	srv := testServer(t, ledger)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/operations/entrance",
		strings.NewReader(`{"product_id":"42"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	// The rejected request must not have touched the ledger or started anything.
	if srv.coord.Status().CurrentOperation != nil {
		t.Error("operation started by unauthenticated request")
	}
	record, _ := ledger.GetByID(context.Background(), "42")
	if record.Location != nil {
		t.Error("ledger mutated by unauthenticated request")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/operations/entrance",
		strings.NewReader(`{"product_id":"42"}`))
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token status = %d, want 401", rec.Code)
	}
}

func TestStartEntranceEndpoint(t *testing.T) {
	qty := 12
	ledger := newMemLedger(inventory.Record{ID: "42", Site: "Vera", Quantity: &qty})
	srv := testServer(t, ledger)
	router := srv.buildRouter()
	token := login(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/operations/entrance",
		strings.NewReader(`{"product_id":"42"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp entranceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Location != 1 || resp.Quantity != 12 || resp.Site != "Vera" {
		t.Errorf("response = %+v, want location 1 cantidad 12 almacen Vera", resp)
	}

	// A second entrance while the first is in flight conflicts.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/operations/entrance",
		strings.NewReader(`{"product_id":"42"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("second entrance status = %d, want 409", rec.Code)
	}
}

func TestStartEntranceErrors(t *testing.T) {
	ledger := newMemLedger()
	srv := testServer(t, ledger)
	router := srv.buildRouter()
	token := login(t, router)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"missing product", `{}`, http.StatusBadRequest},
		{"unknown product", `{"product_id":"ghost"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/operations/entrance",
				strings.NewReader(tt.body))
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestStartExitEndpoint(t *testing.T) {
	loc := 3
	ledger := newMemLedger(
		inventory.Record{ID: "stored", Site: "Vera", Location: &loc},
		inventory.Record{ID: "floor", Site: "Vera"},
	)
	srv := testServer(t, ledger)
	router := srv.buildRouter()
	token := login(t, router)

	// Exit of an unstored product is a 400.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/operations/exit",
		strings.NewReader(`{"id":"floor","kind":"salida_centro"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unstored exit status = %d, want 400", rec.Code)
	}

	// Valid exit vacates the slot.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/operations/exit",
		strings.NewReader(`{"id":"stored","kind":"salida_particulares"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("exit status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp coordinator.StartResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Position != 3 || resp.Quantity != 10 {
		t.Errorf("response = %+v, want posicion 3 cantidad 10", resp)
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := testServer(t, newMemLedger())
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Connected {
		t.Error("connected = true with a disconnected gateway")
	}
	if resp.SystemState.CurrentOperation != nil {
		t.Error("unexpected operation in a fresh server")
	}
}

func TestEmergencyResetEndpoint(t *testing.T) {
	srv := testServer(t, newMemLedger())
	router := srv.buildRouter()
	token := login(t, router)

	if err := srv.coord.HandleEmergencyStop(); err != nil {
		t.Fatalf("HandleEmergencyStop() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/emergency/reset", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if srv.coord.Status().EmergencyStop {
		t.Error("emergency flag still asserted after reset")
	}
}

func TestInventoryEndpoints(t *testing.T) {
	srv := testServer(t, newMemLedger())
	router := srv.buildRouter()
	token := login(t, router)

	body := `{"id":"42","almacen":"Vera","lectura":"QR-42","cantidad":12}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Duplicate registration conflicts.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/inventory/", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate create status = %d, want 409", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/inventory/?almacen=Vera", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list struct {
		Count   int                `json:"count"`
		Records []inventory.Record `json:"records"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if list.Count != 1 || len(list.Records) != 1 || list.Records[0].ID != "42" {
		t.Errorf("list = %+v, want single record 42", list)
	}
}

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Humanoidear/PR2-Frontend-Backend/internal/inventory"
)

// handleListInventory returns the ledger records for a site.
// The almacen query parameter selects the site; it defaults to the
// coordinator's configured site.
func (s *Server) handleListInventory(w http.ResponseWriter, r *http.Request) {
	site := r.URL.Query().Get("almacen")
	if site == "" {
		site = s.defaultSite
	}

	records, err := s.ledger.ListBySite(r.Context(), site)
	if err != nil {
		s.logger.Error("inventory list failed", "site", site, "error", err)
		writeInternalError(w, "failed to list inventory")
		return
	}
	if records == nil {
		records = []inventory.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"almacen": site,
		"records": records,
		"count":   len(records),
	})
}

// createRecordRequest is the request body for POST /inventory.
type createRecordRequest struct {
	ID          string `json:"id"`
	Site        string `json:"almacen"`
	ReadingCode string `json:"lectura"`
	Quantity    *int   `json:"cantidad"`
}

// handleCreateRecord registers a pallet in the ledger ahead of its
// physical arrival. The record stays unstored until an entrance runs.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Site == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "almacen is required")
		return
	}
	if req.Quantity != nil && *req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "cantidad must be at least 1")
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	record := &inventory.Record{
		ID:          req.ID,
		Site:        req.Site,
		ReadingCode: req.ReadingCode,
		Quantity:    req.Quantity,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.ledger.Create(r.Context(), record); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

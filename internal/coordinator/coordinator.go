package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Humanoidear/PR2-Frontend-Backend/internal/infrastructure/mqtt"
	"github.com/Humanoidear/PR2-Frontend-Backend/internal/inventory"
	"github.com/Humanoidear/PR2-Frontend-Backend/internal/slot"
)

// Logger is the minimal logging surface the coordinator needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// StateHub receives state snapshots for fan-out to connected observers.
type StateHub interface {
	Broadcast(channel string, payload any)
}

// TelemetryWriter records device and operation history points.
type TelemetryWriter interface {
	WriteDeviceStatus(site, device, status string)
	WriteSensorReading(site, device string, value float64)
	WriteOperationEvent(site, kind, event string, position int)
}

// Config carries the coordinator's tunables.
type Config struct {
	// Slots is the number of storage positions per site.
	Slots int

	// DefaultEntranceQuantity is used when the ledger row has no quantity.
	DefaultEntranceQuantity int

	// DefaultExitQuantity is used for all exits.
	DefaultExitQuantity int

	// AutomatedSite is the one site whose directives reach real equipment.
	AutomatedSite string

	// DefaultSite receives emergency stop directives when no operation
	// is in flight to name a site.
	DefaultSite string

	// OperationTimeout expires an operation whose AGV arrival never came.
	// Zero disables the watchdog.
	OperationTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.Slots <= 0 {
		c.Slots = slot.DefaultCount
	}
	if c.DefaultEntranceQuantity <= 0 {
		c.DefaultEntranceQuantity = 12
	}
	if c.DefaultExitQuantity <= 0 {
		c.DefaultExitQuantity = 10
	}
}

// Coordinator owns the system state and serializes every operation,
// device report and emergency transition through a single mutex.
type Coordinator struct {
	mu    sync.Mutex
	state SystemState

	cfg     Config
	ledger  inventory.Repository
	gateway Publisher
	policy  SitePolicy
	topics  mqtt.Topics

	logger    Logger
	hub       StateHub
	telemetry TelemetryWriter

	now   func() time.Time
	newID func() string
}

// Option configures optional collaborators.
type Option func(*Coordinator)

// WithLogger attaches a logger.
func WithLogger(l Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStateHub attaches a snapshot broadcaster.
func WithStateHub(h StateHub) Option {
	return func(c *Coordinator) { c.hub = h }
}

// WithTelemetry attaches a telemetry writer.
func WithTelemetry(t TelemetryWriter) Option {
	return func(c *Coordinator) { c.telemetry = t }
}

// New builds a Coordinator over the given ledger and device bus.
func New(cfg Config, ledger inventory.Repository, gateway Publisher, opts ...Option) *Coordinator {
	cfg.applyDefaults()
	c := &Coordinator{
		cfg:     cfg,
		ledger:  ledger,
		gateway: gateway,
		policy:  SitePolicy{AutomatedSite: cfg.AutomatedSite},
		logger:  noopLogger{},
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns an independent copy of the current system state.
func (c *Coordinator) Status() SystemState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.snapshot()
}

// StartEntrance begins storing the product with the given ledger id:
// it assigns the lowest free slot, dispatches the entrance directive and
// marks the ledger row as stored.
func (c *Coordinator) StartEntrance(ctx context.Context, productID string) (*StartResult, error) {
	if productID == "" {
		return nil, ErrMissingProductID
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	record, err := c.ledger.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return c.startEntranceLocked(ctx, record)
}

// startEntranceLocked runs the entrance sequence. The caller holds the
// mutex and has already resolved the ledger record.
func (c *Coordinator) startEntranceLocked(ctx context.Context, record *inventory.Record) (*StartResult, error) {
	if err := c.checkIdleLocked(); err != nil {
		return nil, err
	}
	if record.Stored() {
		// Already resting in a slot: a second entrance would double-book.
		return nil, inventory.ErrAlreadyStored
	}

	occupied, err := c.ledger.OccupiedPositions(ctx, record.Site)
	if err != nil {
		return nil, err
	}
	position, err := slot.Allocate(occupied, c.cfg.Slots)
	if err != nil {
		return nil, err
	}

	quantity := c.cfg.DefaultEntranceQuantity
	if record.Quantity != nil && *record.Quantity > 0 {
		quantity = *record.Quantity
	}

	op := c.beginOperationLocked(KindEntrance, record, position, quantity)

	payload, err := encodeDirective(KindEntrance, quantity, position)
	if err != nil {
		c.clearOperationLocked()
		return nil, err
	}
	simulated, err := c.dispatch(record.Site, c.topics.Directive(), payload)
	if err != nil {
		c.clearOperationLocked()
		return nil, err
	}

	if err := c.ledger.StoreAt(ctx, record.ID, position, c.now().UTC()); err != nil {
		// The directive is already on the wire and cannot be retracted;
		// the operator sees the error and the state is released.
		c.clearOperationLocked()
		return nil, err
	}

	c.logger.Info("entrance started",
		"operation_id", op.ID,
		"product_id", record.ID,
		"site", record.Site,
		"position", position,
		"quantity", quantity,
		"simulated", simulated)
	c.publishOperationEventLocked(op, "started")
	c.broadcastLocked()

	return &StartResult{
		Position:  position,
		Quantity:  quantity,
		Site:      record.Site,
		Simulated: simulated,
	}, nil
}

// StartExit begins retrieving the product with the given ledger id from
// its slot, dispatching the exit directive and removing the ledger row.
func (c *Coordinator) StartExit(ctx context.Context, kind OperationKind, productID string) (*StartResult, error) {
	if !kind.IsExit() {
		return nil, ErrInvalidKind
	}
	if productID == "" {
		return nil, ErrMissingProductID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkIdleLocked(); err != nil {
		return nil, err
	}

	record, err := c.ledger.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !record.Stored() {
		return nil, ErrNotStored
	}
	position := *record.Location
	quantity := c.cfg.DefaultExitQuantity
	if record.Quantity != nil && *record.Quantity > 0 {
		quantity = *record.Quantity
	}

	op := c.beginOperationLocked(kind, record, position, quantity)

	payload, err := encodeDirective(kind, quantity, position)
	if err != nil {
		c.clearOperationLocked()
		return nil, err
	}
	simulated, err := c.dispatch(record.Site, c.topics.Directive(), payload)
	if err != nil {
		c.clearOperationLocked()
		return nil, err
	}

	if err := c.ledger.Delete(ctx, record.ID); err != nil {
		c.clearOperationLocked()
		return nil, err
	}

	c.logger.Info("exit started",
		"operation_id", op.ID,
		"kind", kind,
		"product_id", record.ID,
		"site", record.Site,
		"position", position,
		"simulated", simulated)
	c.publishOperationEventLocked(op, "started")
	c.broadcastLocked()

	return &StartResult{
		Position:  position,
		Quantity:  quantity,
		Site:      record.Site,
		Simulated: simulated,
	}, nil
}

// checkIdleLocked rejects a new operation while one is in flight or the
// emergency flag is asserted.
func (c *Coordinator) checkIdleLocked() error {
	if c.state.EmergencyStop {
		return ErrEmergencyActive
	}
	if c.state.CurrentOperation != nil {
		return ErrOperationInProgress
	}
	return nil
}

func (c *Coordinator) beginOperationLocked(kind OperationKind, record *inventory.Record, position, quantity int) *Operation {
	op := &Operation{
		ID:                c.newID(),
		Kind:              kind,
		Position:          position,
		Quantity:          quantity,
		ProductID:         record.ID,
		Site:              record.Site,
		Phase:             PhasePickingFromStorage,
		AGVTargetPosition: position,
		StartedAt:         c.now(),
	}
	c.state.CurrentOperation = op
	c.state.PendingBoxes = quantity
	return op
}

func (c *Coordinator) clearOperationLocked() {
	c.state.CurrentOperation = nil
	c.state.PendingBoxes = 0
}

// HandleConveyorStatus records a conveyor status report.
func (c *Coordinator) HandleConveyorStatus(number int, payload []byte) error {
	status := string(payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	switch number {
	case 1:
		c.state.Conveyor1Status = status
	case 2:
		c.state.Conveyor2Status = status
	default:
		c.logger.Warn("status report for unknown conveyor", "number", number)
		return nil
	}
	if c.telemetry != nil {
		c.telemetry.WriteDeviceStatus(c.siteLocked(), conveyorName(number), status)
	}
	c.broadcastLocked()
	return nil
}

// HandleInfraredStatus records an infrared sensor reading.
func (c *Coordinator) HandleInfraredStatus(number int, payload []byte) error {
	value, err := decodeInfrared(payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch number {
	case 1:
		c.state.Infrared1Status = value
	case 2:
		c.state.Infrared2Status = value
	default:
		c.logger.Warn("reading from unknown infrared sensor", "number", number)
		return nil
	}
	if c.telemetry != nil {
		c.telemetry.WriteSensorReading(c.siteLocked(), infraredName(number), float64(value))
	}
	c.broadcastLocked()
	return nil
}

// HandleAGVStatus records an AGV position report. Arrival at the current
// operation's target position completes the operation.
func (c *Coordinator) HandleAGVStatus(payload []byte) error {
	status, err := decodeAGVStatus(payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.AGV = status
	if c.telemetry != nil {
		c.telemetry.WriteSensorReading(c.siteLocked(), "agv", float64(status.Location))
	}

	op := c.state.CurrentOperation
	if op != nil && status.Location == op.AGVTargetPosition {
		op.Phase = PhaseCompleted
		c.logger.Info("operation completed",
			"operation_id", op.ID,
			"kind", op.Kind,
			"position", op.Position)
		c.publishOperationEventLocked(op, "completed")
		c.clearOperationLocked()
	}
	c.broadcastLocked()
	return nil
}

// HandleQRScan starts an entrance for the scanned product. Scans that
// name an unknown product, or arrive while another operation is in
// flight, are logged and dropped: the scanner has no reply channel.
func (c *Coordinator) HandleQRScan(ctx context.Context, payload []byte) error {
	scan, err := decodeQRScan(payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	record, err := c.ledger.GetByReadingCode(ctx, scan.ReadingCode)
	if err != nil {
		if errors.Is(err, inventory.ErrRecordNotFound) {
			c.logger.Warn("qr scan for unknown product", "lectura", scan.ReadingCode)
			return nil
		}
		return err
	}
	if _, err := c.startEntranceLocked(ctx, record); err != nil {
		if errors.Is(err, ErrOperationInProgress) || errors.Is(err, ErrEmergencyActive) ||
			errors.Is(err, inventory.ErrAlreadyStored) {
			c.logger.Warn("qr scan dropped", "lectura", scan.ReadingCode, "reason", err)
			return nil
		}
		return err
	}
	return nil
}

// Run drives the stale-operation watchdog until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) {
	if c.cfg.OperationTimeout <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(watchdogInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.expireStale()
		}
	}
}

const watchdogInterval = time.Second

// expireStale clears an operation whose completion report never arrived.
func (c *Coordinator) expireStale() {
	c.mu.Lock()
	defer c.mu.Unlock()

	op := c.state.CurrentOperation
	if op == nil || c.cfg.OperationTimeout <= 0 {
		return
	}
	if c.now().Sub(op.StartedAt) < c.cfg.OperationTimeout {
		return
	}
	c.logger.Warn("operation timed out",
		"operation_id", op.ID,
		"kind", op.Kind,
		"position", op.Position,
		"started_at", op.StartedAt)
	c.publishOperationEventLocked(op, "timed_out")
	c.clearOperationLocked()
	c.broadcastLocked()
}

// operationEvent is published on the operation event topic for dashboards
// and recorders; delivery is best-effort and follows the site policy, so
// simulated-site operations produce no bus traffic at all.
type operationEvent struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Event    string `json:"event"`
	Site     string `json:"almacen"`
	Position int    `json:"posicion"`
}

func (c *Coordinator) publishOperationEventLocked(op *Operation, event string) {
	payload, err := json.Marshal(operationEvent{
		ID:       op.ID,
		Kind:     string(op.Kind),
		Event:    event,
		Site:     op.Site,
		Position: op.Position,
	})
	if err != nil {
		return
	}
	if _, err := c.dispatch(op.Site, c.topics.OperationEvent(), payload); err != nil {
		c.logger.Warn("operation event publish failed", "event", event, "error", err)
	}
	if c.telemetry != nil {
		c.telemetry.WriteOperationEvent(op.Site, string(op.Kind), event, op.Position)
	}
}

func (c *Coordinator) broadcastLocked() {
	if c.hub != nil {
		c.hub.Broadcast("state", c.state.snapshot())
	}
}

// siteLocked names the site device reports are attributed to: the current
// operation's site when one is in flight, the automated site otherwise.
func (c *Coordinator) siteLocked() string {
	if op := c.state.CurrentOperation; op != nil {
		return op.Site
	}
	if c.cfg.AutomatedSite != "" {
		return c.cfg.AutomatedSite
	}
	return c.cfg.DefaultSite
}

func conveyorName(number int) string {
	if number == 2 {
		return "cinta2"
	}
	return "cinta1"
}

func infraredName(number int) string {
	if number == 2 {
		return "infrarrojos2"
	}
	return "infrarrojos1"
}

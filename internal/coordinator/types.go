package coordinator

import "time"

// OperationKind identifies the direction of a warehouse operation.
type OperationKind string

// Operation kinds. The wire values match the device firmware's accion field.
const (
	// KindEntrance stores a pallet into a slot.
	KindEntrance OperationKind = "entrada"

	// KindExitParticulares retrieves a pallet for individual customers.
	KindExitParticulares OperationKind = "salida_particulares"

	// KindExitCentro retrieves a pallet for the distribution centre.
	KindExitCentro OperationKind = "salida_centro"
)

// IsExit reports whether the kind is one of the retrieval operations.
func (k OperationKind) IsExit() bool {
	return k == KindExitParticulares || k == KindExitCentro
}

// Valid reports whether the kind is a known operation kind.
func (k OperationKind) Valid() bool {
	return k == KindEntrance || k.IsExit()
}

// Phase identifies where an operation is in its lifecycle.
type Phase string

const (
	// PhasePickingFromStorage is the initial phase: equipment is moving
	// the pallet between the slot and the processing station.
	PhasePickingFromStorage Phase = "picking_from_storage"

	// PhaseCompleted is reached when the AGV reports arrival at the
	// operation's target position. The operation is cleared immediately
	// after entering this phase.
	PhaseCompleted Phase = "completed"
)

// AGVStatus is the vehicle state as last reported over the device bus.
type AGVStatus struct {
	// Location is the storage position the AGV last reported (ubicacion).
	Location int `json:"ubicacion"`

	// State is "drop" (empty) or "carry" (loaded), as reported (estado).
	State string `json:"estado"`
}

// Operation is one warehouse operation in flight. At most one exists
// system-wide at any time.
type Operation struct {
	// ID uniquely identifies this operation for logs and events.
	ID string `json:"id"`

	Kind      OperationKind `json:"kind"`
	Position  int           `json:"position"`
	Quantity  int           `json:"quantity"`
	ProductID string        `json:"product_id"`
	Site      string        `json:"site"`
	Phase     Phase         `json:"phase"`

	// AGVTargetPosition is the position whose AGV arrival report
	// completes this operation. Always equals Position.
	AGVTargetPosition int `json:"agv_target_position"`

	// StartedAt feeds the stale-operation watchdog.
	StartedAt time.Time `json:"started_at"`
}

// SystemState is the single process-wide mutable state, owned exclusively
// by the Coordinator. All access is serialized through its method set.
type SystemState struct {
	EmergencyStop bool `json:"emergency_stop"`

	Conveyor1Status string `json:"conveyor1_status"`
	Conveyor2Status string `json:"conveyor2_status"`

	Infrared1Status int `json:"infrared1_status"`
	Infrared2Status int `json:"infrared2_status"`

	AGV AGVStatus `json:"agv"`

	PendingBoxes int `json:"pending_boxes"`

	// CurrentOperation is nil whenever no operation is in flight.
	CurrentOperation *Operation `json:"current_operation,omitempty"`
}

// snapshot returns an independent copy of the state for observers.
func (s *SystemState) snapshot() SystemState {
	cpy := *s
	if s.CurrentOperation != nil {
		op := *s.CurrentOperation
		cpy.CurrentOperation = &op
	}
	return cpy
}

// StartResult is returned by StartEntrance and StartExit.
type StartResult struct {
	// Position is the storage slot assigned (entrance) or vacated (exit).
	Position int `json:"posicion"`

	// Quantity is the number of boxes involved.
	Quantity int `json:"cantidad"`

	// Site is the warehouse the operation runs at.
	Site string `json:"almacen"`

	// Simulated is true when the directive was logged instead of
	// transmitted because the site is not wired to automation.
	Simulated bool `json:"simulation"`
}

package coordinator

import "errors"

// Sentinel errors returned by the coordinator. Callers map these onto
// protocol-specific failure codes with errors.Is.
var (
	// ErrOperationInProgress rejects a start request while another
	// operation is in flight.
	ErrOperationInProgress = errors.New("operation already in progress")

	// ErrEmergencyActive rejects start requests while the emergency
	// stop flag is asserted and not yet reset by an operator.
	ErrEmergencyActive = errors.New("emergency stop active")

	// ErrNotStored rejects an exit for a product not resting in a slot.
	ErrNotStored = errors.New("product is not stored in any position")

	// ErrInvalidKind rejects an exit request with an unknown kind.
	ErrInvalidKind = errors.New("invalid operation kind")

	// ErrMissingProductID rejects a start request without a product.
	ErrMissingProductID = errors.New("product id is required")

	// ErrDispatchFailed wraps a device bus publish failure during a
	// request-triggered directive dispatch.
	ErrDispatchFailed = errors.New("directive dispatch failed")

	// ErrBadPayload wraps a device report that cannot be decoded.
	ErrBadPayload = errors.New("malformed device payload")
)

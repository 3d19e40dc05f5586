package inventory

import "time"

// Record represents one tracked product pallet in the ledger.
// This matches the reparto table in migrations/20260301_120000_reparto.up.sql.
type Record struct {
	// ID is the product identifier used by operator requests.
	ID string `json:"id"`

	// Site is the warehouse the pallet belongs to (almacen).
	Site string `json:"almacen"`

	// ReadingCode is the QR reading code printed on the pallet (lectura).
	ReadingCode string `json:"lectura"`

	// Quantity is the number of boxes on the pallet. Nil when the record
	// was registered without a count; operations fall back to configured
	// defaults.
	Quantity *int `json:"cantidad,omitempty"`

	// Location is the storage slot the pallet occupies. Nil until an
	// entrance operation stores it.
	Location *int `json:"location,omitempty"`

	// Timestamp is when the record was registered.
	Timestamp time.Time `json:"timestamp"`

	// ReceivedAt is when the pallet was physically received into storage.
	// Nil until an entrance operation completes the ledger write.
	ReceivedAt *time.Time `json:"timestamp_recepcion,omitempty"`
}

// Stored reports whether the pallet currently occupies a storage slot.
func (r *Record) Stored() bool {
	return r.Location != nil
}

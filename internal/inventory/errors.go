package inventory

import "errors"

// Domain errors for the inventory package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, inventory.ErrRecordNotFound) {
//	    // handle not found case
//	}
var (
	// ErrRecordNotFound is returned when a record ID or reading code does not exist.
	ErrRecordNotFound = errors.New("inventory: record not found")

	// ErrRecordExists is returned when creating a record with an ID that already exists.
	ErrRecordExists = errors.New("inventory: record already exists")

	// ErrAlreadyStored is returned when storing a record that already has a location.
	ErrAlreadyStored = errors.New("inventory: record already stored")

	// ErrSlotTaken is returned when the target slot is occupied at write time.
	// This is the conditional-write guard against concurrent allocation.
	ErrSlotTaken = errors.New("inventory: slot already taken")
)

// Package slot assigns storage positions within a warehouse site.
//
// Allocation is a pure function over a snapshot of occupied positions:
// the caller reads occupancy from the ledger and the coordinator
// serializes calls, so the allocator itself holds no state.
package slot

import "errors"

// DefaultCount is the number of storage positions per site when not configured.
const DefaultCount = 5

// ErrNoCapacity is returned when every position in the range is occupied.
var ErrNoCapacity = errors.New("slot: no free position")

// Allocate returns the lowest free position in 1..count.
//
// Deterministic: positions are scanned in ascending order and the first
// one absent from occupied wins. Returns ErrNoCapacity when all count
// positions are taken.
func Allocate(occupied map[int]bool, count int) (int, error) {
	if count <= 0 {
		count = DefaultCount
	}

	for position := 1; position <= count; position++ {
		if !occupied[position] {
			return position, nil
		}
	}
	return 0, ErrNoCapacity
}

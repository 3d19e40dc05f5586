// Package inventory provides the persistent ledger of tracked product
// pallets and their storage slots.
//
// The ledger is the source of truth for slot occupancy: the coordinator
// reads occupied positions per site before allocating, writes the slot
// and receipt timestamp on entrance, and deletes the record on exit.
//
// Slot consistency is enforced at two levels: StoreAt only updates rows
// whose location is still NULL, and a unique index on (almacen, location)
// rejects duplicate slots outright.
package inventory

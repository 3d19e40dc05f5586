// Package database provides SQLite connection management and schema
// migrations for the inventory ledger.
//
// # Features
//
//   - WAL mode and busy timeout configuration for concurrent access
//   - Embedded SQL migrations applied in version order, one transaction each
//   - Health checks for the process supervisor
//
// # Usage
//
//	db, err := database.Open(database.Config{Path: "./data/almacen.db", WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// SQLite is opened with a single connection because it supports only one
// writer; callers should treat the ledger as a serialized resource.
package database

package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for ledger persistence operations.
// This abstraction allows different implementations (SQLite, fake) and
// enables coordinator tests without a database.
type Repository interface {
	// GetByID retrieves a record by product identifier.
	// Returns ErrRecordNotFound if the record does not exist.
	GetByID(ctx context.Context, id string) (*Record, error)

	// GetByReadingCode retrieves a record by its QR reading code.
	// Returns ErrRecordNotFound if no record carries the code.
	GetByReadingCode(ctx context.Context, code string) (*Record, error)

	// ListBySite retrieves all records for a warehouse site.
	ListBySite(ctx context.Context, site string) ([]Record, error)

	// OccupiedPositions returns the set of storage slots currently
	// occupied at a site (records with a non-null location).
	OccupiedPositions(ctx context.Context, site string) (map[int]bool, error)

	// Create inserts a new record.
	// Returns ErrRecordExists if the ID is already present.
	Create(ctx context.Context, record *Record) error

	// StoreAt writes the storage slot and receipt timestamp for a record.
	// The write is conditional: it only succeeds while the record has no
	// location, so two concurrent entrances can never share a slot.
	// Returns ErrRecordNotFound or ErrAlreadyStored accordingly.
	StoreAt(ctx context.Context, id string, position int, receivedAt time.Time) error

	// Delete removes a record by ID (the pallet leaves the warehouse).
	// Returns ErrRecordNotFound if the record does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection with the reparto
// schema applied.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const recordColumns = `id, almacen, lectura, cantidad, location, timestamp, timestamp_recepcion`

// GetByID retrieves a record by product identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM reparto WHERE id = ?`

	record, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying record by id: %w", err)
	}
	return record, nil
}

// GetByReadingCode retrieves a record by its QR reading code.
func (r *SQLiteRepository) GetByReadingCode(ctx context.Context, code string) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM reparto WHERE lectura = ?`

	record, err := scanRecord(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying record by reading code: %w", err)
	}
	return record, nil
}

// ListBySite retrieves all records for a warehouse site.
func (r *SQLiteRepository) ListBySite(ctx context.Context, site string) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM reparto WHERE almacen = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, site)
	if err != nil {
		return nil, fmt.Errorf("querying records by site: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

// OccupiedPositions returns the set of occupied storage slots at a site.
func (r *SQLiteRepository) OccupiedPositions(ctx context.Context, site string) (map[int]bool, error) {
	query := `SELECT location FROM reparto WHERE almacen = ? AND location IS NOT NULL`

	rows, err := r.db.QueryContext(ctx, query, site)
	if err != nil {
		return nil, fmt.Errorf("querying occupied positions: %w", err)
	}
	defer rows.Close()

	occupied := make(map[int]bool)
	for rows.Next() {
		var position int
		if err := rows.Scan(&position); err != nil {
			return nil, fmt.Errorf("scanning position: %w", err)
		}
		occupied[position] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating positions: %w", err)
	}
	return occupied, nil
}

// Create inserts a new record.
func (r *SQLiteRepository) Create(ctx context.Context, record *Record) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO reparto (id, almacen, lectura, cantidad, location, timestamp, timestamp_recepcion)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.Site,
		record.ReadingCode,
		record.Quantity,
		record.Location,
		record.Timestamp.UTC().Format(time.RFC3339),
		formatTimePtr(record.ReceivedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrRecordExists
		}
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

// StoreAt writes the storage slot and receipt timestamp for a record.
//
// The UPDATE is guarded on location IS NULL and the unique index on
// (almacen, location) rejects a duplicate slot, so allocation stays
// consistent even if two entrances race past the in-memory check.
func (r *SQLiteRepository) StoreAt(ctx context.Context, id string, position int, receivedAt time.Time) error {
	query := `
		UPDATE reparto
		SET location = ?, timestamp_recepcion = ?
		WHERE id = ? AND location IS NULL`

	result, err := r.db.ExecContext(ctx, query,
		position,
		receivedAt.UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrSlotTaken
		}
		return fmt.Errorf("storing record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking store result: %w", err)
	}
	if affected == 0 {
		// Either the record is missing or it already has a location.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrAlreadyStored
	}
	return nil
}

// Delete removes a record by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reparto WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanRecord.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord scans a reparto row into a Record.
func scanRecord(row scanner) (*Record, error) {
	var (
		record     Record
		quantity   sql.NullInt64
		location   sql.NullInt64
		timestamp  string
		receivedAt sql.NullString
	)

	if err := row.Scan(
		&record.ID,
		&record.Site,
		&record.ReadingCode,
		&quantity,
		&location,
		&timestamp,
		&receivedAt,
	); err != nil {
		return nil, err
	}

	if quantity.Valid {
		q := int(quantity.Int64)
		record.Quantity = &q
	}
	if location.Valid {
		l := int(location.Int64)
		record.Location = &l
	}

	ts, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp: %w", err)
	}
	record.Timestamp = ts

	if receivedAt.Valid {
		rt, err := time.Parse(time.RFC3339, receivedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing receipt timestamp: %w", err)
		}
		record.ReceivedAt = &rt
	}

	return &record, nil
}

// formatTimePtr formats an optional time for storage, preserving NULL.
func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

package inventory

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the reparto table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE reparto (
			id TEXT PRIMARY KEY,
			almacen TEXT NOT NULL,
			lectura TEXT NOT NULL,
			cantidad INTEGER,
			location INTEGER,
			timestamp TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			timestamp_recepcion TEXT
		);
		CREATE INDEX idx_reparto_almacen ON reparto(almacen);
		CREATE UNIQUE INDEX idx_reparto_almacen_location
			ON reparto(almacen, location) WHERE location IS NOT NULL;
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// testRecord creates a record for testing.
func testRecord(id, site string, quantity int) *Record {
	q := quantity
	return &Record{
		ID:          id,
		Site:        site,
		ReadingCode: "QR-" + id,
		Quantity:    &q,
	}
}

func TestSQLiteRepository_CreateAndGet(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	t.Run("creates and retrieves record", func(t *testing.T) {
		if err := repo.Create(ctx, testRecord("42", "Vera", 12)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		got, err := repo.GetByID(ctx, "42")
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.Site != "Vera" {
			t.Errorf("Site = %q, want %q", got.Site, "Vera")
		}
		if got.Quantity == nil || *got.Quantity != 12 {
			t.Errorf("Quantity = %v, want 12", got.Quantity)
		}
		if got.Stored() {
			t.Error("new record should not be stored")
		}
	})

	t.Run("returns error for duplicate ID", func(t *testing.T) {
		if err := repo.Create(ctx, testRecord("dup", "Vera", 1)); err != nil {
			t.Fatalf("first Create() error = %v", err)
		}
		err := repo.Create(ctx, testRecord("dup", "Vera", 2))
		if !errors.Is(err, ErrRecordExists) {
			t.Errorf("Create() error = %v, want ErrRecordExists", err)
		}
	})

	t.Run("returns not found for unknown id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "missing")
		if !errors.Is(err, ErrRecordNotFound) {
			t.Errorf("GetByID() error = %v, want ErrRecordNotFound", err)
		}
	})
}

func TestSQLiteRepository_GetByReadingCode(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, testRecord("7", "Vera", 4)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByReadingCode(ctx, "QR-7")
	if err != nil {
		t.Fatalf("GetByReadingCode() error = %v", err)
	}
	if got.ID != "7" {
		t.Errorf("ID = %q, want %q", got.ID, "7")
	}

	if _, err := repo.GetByReadingCode(ctx, "QR-none"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("GetByReadingCode() error = %v, want ErrRecordNotFound", err)
	}
}

func TestSQLiteRepository_StoreAt(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	if err := repo.Create(ctx, testRecord("p1", "Vera", 12)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("stores record at position", func(t *testing.T) {
		if err := repo.StoreAt(ctx, "p1", 1, now); err != nil {
			t.Fatalf("StoreAt() error = %v", err)
		}

		got, err := repo.GetByID(ctx, "p1")
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.Location == nil || *got.Location != 1 {
			t.Errorf("Location = %v, want 1", got.Location)
		}
		if got.ReceivedAt == nil {
			t.Error("ReceivedAt should be set after StoreAt")
		}
	})

	t.Run("rejects storing an already stored record", func(t *testing.T) {
		err := repo.StoreAt(ctx, "p1", 2, now)
		if !errors.Is(err, ErrAlreadyStored) {
			t.Errorf("StoreAt() error = %v, want ErrAlreadyStored", err)
		}
	})

	t.Run("rejects taken slot", func(t *testing.T) {
		if err := repo.Create(ctx, testRecord("p2", "Vera", 5)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		err := repo.StoreAt(ctx, "p2", 1, now)
		if !errors.Is(err, ErrSlotTaken) {
			t.Errorf("StoreAt() error = %v, want ErrSlotTaken", err)
		}
	})

	t.Run("returns not found for unknown record", func(t *testing.T) {
		err := repo.StoreAt(ctx, "ghost", 3, now)
		if !errors.Is(err, ErrRecordNotFound) {
			t.Errorf("StoreAt() error = %v, want ErrRecordNotFound", err)
		}
	})
}

func TestSQLiteRepository_OccupiedPositions(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	for i, id := range []string{"a", "b", "c"} {
		if err := repo.Create(ctx, testRecord(id, "Vera", 1)); err != nil {
			t.Fatalf("Create(%s) error = %v", id, err)
		}
		if err := repo.StoreAt(ctx, id, i+1, now); err != nil {
			t.Fatalf("StoreAt(%s) error = %v", id, err)
		}
	}
	// One unstored record and one at a different site must not count.
	if err := repo.Create(ctx, testRecord("unstored", "Vera", 1)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(ctx, testRecord("other", "Garrucha", 1)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.StoreAt(ctx, "other", 1, now); err != nil {
		t.Fatalf("StoreAt(other) error = %v", err)
	}

	occupied, err := repo.OccupiedPositions(ctx, "Vera")
	if err != nil {
		t.Fatalf("OccupiedPositions() error = %v", err)
	}
	if len(occupied) != 3 {
		t.Errorf("len(occupied) = %d, want 3", len(occupied))
	}
	for _, pos := range []int{1, 2, 3} {
		if !occupied[pos] {
			t.Errorf("position %d should be occupied", pos)
		}
	}
}

func TestSQLiteRepository_Delete(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, testRecord("del", "Vera", 1)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Delete(ctx, "del"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, "del"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrRecordNotFound", err)
	}
	if err := repo.Delete(ctx, "del"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("second Delete() error = %v, want ErrRecordNotFound", err)
	}
}

func TestSQLiteRepository_ListBySite(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	for _, id := range []string{"1", "2"} {
		if err := repo.Create(ctx, testRecord(id, "Vera", 1)); err != nil {
			t.Fatalf("Create(%s) error = %v", id, err)
		}
	}
	if err := repo.Create(ctx, testRecord("3", "Garrucha", 1)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	records, err := repo.ListBySite(ctx, "Vera")
	if err != nil {
		t.Fatalf("ListBySite() error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("len(records) = %d, want 2", len(records))
	}
}

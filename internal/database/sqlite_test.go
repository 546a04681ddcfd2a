package database

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open database failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTransactionCommits(t *testing.T) {
	db := newTestDB(t)

	err := Transaction(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO journeys (id, owner_id, start_time, end_time, status)
			VALUES ('j-1', 'owner-1', 0, 0, 'completed')
		`)
		return err
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM journeys").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 committed row, got %d", count)
	}
}

func TestTransactionRollsBackOnError(t *testing.T) {
	db := newTestDB(t)

	boom := errors.New("boom")
	err := Transaction(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO journeys (id, owner_id, start_time, end_time, status)
			VALUES ('j-1', 'owner-1', 0, 0, 'completed')
		`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the callback error, got %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM journeys").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected rollback to leave 0 rows, got %d", count)
	}
}

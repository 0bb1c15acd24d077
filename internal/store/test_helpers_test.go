package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/querydoc/internal/testutil"
)

// createTestStore opens a fresh sqlite store with sequential log ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), DriverSQLite, path, WithIDGenerator(testutil.NewSequentialIDGenerator()))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestTables adds a users/orders pair with a foreign key.
func createTestTables(t *testing.T, s *Store) {
	t.Helper()
	_, err := s.DB().Exec(`
		CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			name VARCHAR(40) NOT NULL,
			age INTEGER DEFAULT 0,
			_user TEXT,
			_message TEXT
		);
		CREATE TABLE orders (
			id INTEGER PRIMARY KEY,
			user_id INTEGER REFERENCES users(id),
			total NUMERIC
		);
	`)
	if err != nil {
		t.Fatalf("create test tables: %v", err)
	}
}

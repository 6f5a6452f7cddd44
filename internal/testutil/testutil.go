// Package testutil provides shared test helpers for setting up book stores.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/shelf/internal/catalog"
	"github.com/starford/shelf/internal/models"
)

// TestDB creates a temporary SQLite book store that is automatically cleaned up.
func TestDB(t *testing.T) *catalog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "shelf-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() {
		os.Remove(dbFile.Name())
		os.Remove(dbFile.Name() + "-wal")
		os.Remove(dbFile.Name() + "-shm")
	})

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Seed inserts books in order and returns their assigned ids.
func Seed(t *testing.T, db catalog.BookStore, books ...models.Book) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(books))
	for _, b := range books {
		id, err := db.Create(b)
		if err != nil {
			t.Fatalf("seed %q: %v", b.Title, err)
		}
		ids = append(ids, id)
	}
	return ids
}

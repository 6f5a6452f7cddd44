package catalog

import "github.com/starford/shelf/internal/models"

// BookStore defines the durable CRUD contract over book records.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type BookStore interface {
	Create(b models.Book) (int64, error)
	ListAll() ([]models.Book, error)
	Get(id int64) (models.Book, error)
	FindByFields(title, author, tags string) (models.Book, bool, error)
	UpdateByID(id int64, b models.Book) (bool, error)
	UpdateIfUnchanged(id int64, prev, next models.Book) (bool, error)
	DeleteByID(id int64) (bool, error)
	DeleteByTitle(title string) (int64, error)
	Count() (int, error)
	Close() error
}

// Verify *DB satisfies BookStore at compile time.
var _ BookStore = (*DB)(nil)

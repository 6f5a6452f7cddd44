// Package bookservice holds the context-first domain operations shared by the
// HTTP API, the MCP tools and the command line.
package bookservice

import (
	"context"
	"fmt"

	"github.com/starford/shelf/internal/apperr"
	"github.com/starford/shelf/internal/catalog"
	"github.com/starford/shelf/internal/models"
)

// Event kinds passed to an EventFunc.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventFunc is called after every successful mutation.
type EventFunc func(kind string, id int64)

// BookDetail is a book together with its entity tag.
type BookDetail struct {
	models.Book
	Checksum string `json:"checksum"`
}

// Input carries the caller-supplied fields of a book.
type Input struct {
	Title  string `json:"title" yaml:"title"`
	Author string `json:"author" yaml:"author"`
	Tags   string `json:"tags" yaml:"tags"`
}

// Service coordinates validation, store access and change events.
type Service struct {
	db      catalog.BookStore
	onEvent EventFunc
}

// Option configures a Service.
type Option func(*Service)

// WithEvents registers fn to be told about every mutation.
func WithEvents(fn EventFunc) Option {
	return func(s *Service) {
		s.onEvent = fn
	}
}

// NewService creates a new book service.
func NewService(db catalog.BookStore, opts ...Option) *Service {
	s := &Service{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListBooks returns every book in store order.
func (s *Service) ListBooks(_ context.Context) ([]BookDetail, error) {
	books, err := s.db.ListAll()
	if err != nil {
		return nil, err
	}
	out := make([]BookDetail, len(books))
	for i, b := range books {
		out[i] = detail(b)
	}
	return out, nil
}

// GetBook returns a single book or apperr.ErrNotFound.
func (s *Service) GetBook(_ context.Context, id int64) (*BookDetail, error) {
	b, err := s.db.Get(id)
	if err != nil {
		return nil, err
	}
	d := detail(b)
	return &d, nil
}

// FindBook resolves exact field values to a stored book.
func (s *Service) FindBook(_ context.Context, title, author, tags string) (*BookDetail, error) {
	b, ok, err := s.db.FindByFields(title, author, tags)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("bookservice: find %q: %w", title, apperr.ErrNotFound)
	}
	d := detail(b)
	return &d, nil
}

// CreateBook validates and stores a new book.
func (s *Service) CreateBook(_ context.Context, in Input) (*BookDetail, error) {
	b, err := in.book()
	if err != nil {
		return nil, err
	}
	id, err := s.db.Create(b)
	if err != nil {
		return nil, err
	}
	b.ID = id
	s.emit(EventCreated, id)
	d := detail(b)
	return &d, nil
}

// UpdateBook overwrites all fields of a book. A non-empty ifMatch must equal
// the current checksum or apperr.ErrConflict is returned.
func (s *Service) UpdateBook(_ context.Context, id int64, in Input, ifMatch string) (*BookDetail, error) {
	b, err := in.book()
	if err != nil {
		return nil, err
	}
	if ifMatch == "" {
		ok, err := s.db.UpdateByID(id, b)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("bookservice: book %d: %w", id, apperr.ErrNotFound)
		}
	} else {
		current, err := s.db.Get(id)
		if err != nil {
			return nil, err
		}
		if current.Checksum() != ifMatch {
			return nil, fmt.Errorf("bookservice: book %d: %w", id, apperr.ErrConflict)
		}
		// A writer that got in after the read makes the guarded update miss.
		ok, err := s.db.UpdateIfUnchanged(id, current, b)
		if err != nil {
			return nil, err
		}
		if !ok {
			if _, err := s.db.Get(id); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("bookservice: book %d changed concurrently: %w", id, apperr.ErrConflict)
		}
	}
	b.ID = id
	s.emit(EventUpdated, id)
	d := detail(b)
	return &d, nil
}

// DeleteBook removes a book by id.
func (s *Service) DeleteBook(_ context.Context, id int64) error {
	ok, err := s.db.DeleteByID(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bookservice: book %d: %w", id, apperr.ErrNotFound)
	}
	s.emit(EventDeleted, id)
	return nil
}

// DeleteByTitle removes every book with the exact title and reports how many
// went. Several books may share a title.
func (s *Service) DeleteByTitle(_ context.Context, title string) (int64, error) {
	if title == "" {
		return 0, fmt.Errorf("bookservice: title is required: %w", apperr.ErrValidation)
	}
	n, err := s.db.DeleteByTitle(title)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.emit(EventDeleted, 0)
	}
	return n, nil
}

// Import creates every book in order. It validates all of them first, so an
// invalid entry leaves the store untouched.
func (s *Service) Import(ctx context.Context, in []Input) ([]int64, error) {
	for i, b := range in {
		if _, err := b.book(); err != nil {
			return nil, fmt.Errorf("bookservice: import entry %d: %w", i+1, err)
		}
	}
	ids := make([]int64, 0, len(in))
	for _, b := range in {
		d, err := s.CreateBook(ctx, b)
		if err != nil {
			return ids, err
		}
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// Export returns every stored book.
func (s *Service) Export(_ context.Context) ([]models.Book, error) {
	return s.db.ListAll()
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(_ context.Context) error {
	_, err := s.db.Count()
	return err
}

func (s *Service) emit(kind string, id int64) {
	if s.onEvent != nil {
		s.onEvent(kind, id)
	}
}

// book normalizes and validates the input.
func (in Input) book() (models.Book, error) {
	b := models.Book{Title: in.Title, Author: in.Author, Tags: in.Tags}
	b.Normalize()
	if err := b.Validate(); err != nil {
		return models.Book{}, fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	return b, nil
}

func detail(b models.Book) BookDetail {
	return BookDetail{Book: b, Checksum: b.Checksum()}
}

package bookservice

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/shelf/internal/apperr"
	"github.com/starford/shelf/internal/catalog"
	"github.com/starford/shelf/internal/models"
	"github.com/starford/shelf/internal/testutil"
)

type event struct {
	kind string
	id   int64
}

func testService(t *testing.T) (*Service, *[]event) {
	t.Helper()
	var events []event
	svc := NewService(testutil.TestDB(t), WithEvents(func(kind string, id int64) {
		events = append(events, event{kind, id})
	}))
	return svc, &events
}

func TestCreateBook_Validation(t *testing.T) {
	svc, events := testService(t)
	ctx := context.Background()

	cases := []Input{
		{Title: "", Author: "Herbert"},
		{Title: "Dune", Author: "   "},
		{},
	}
	for _, in := range cases {
		if _, err := svc.CreateBook(ctx, in); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("CreateBook(%+v) err = %v, want ErrValidation", in, err)
		}
	}
	books, _ := svc.ListBooks(ctx)
	if len(books) != 0 {
		t.Errorf("invalid input reached the store: %+v", books)
	}
	if len(*events) != 0 {
		t.Errorf("unexpected events: %+v", *events)
	}
}

func TestCreateBook_TrimsAndEmits(t *testing.T) {
	svc, events := testService(t)
	b, err := svc.CreateBook(context.Background(), Input{Title: "  Dune ", Author: "Herbert", Tags: " scifi"})
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	if b.Title != "Dune" || b.Tags != "scifi" {
		t.Errorf("book = %+v", b.Book)
	}
	if b.Checksum != b.Book.Checksum() {
		t.Errorf("checksum = %q", b.Checksum)
	}
	if len(*events) != 1 || (*events)[0] != (event{EventCreated, b.ID}) {
		t.Errorf("events = %+v", *events)
	}
}

func TestUpdateBook_IfMatch(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	b, _ := svc.CreateBook(ctx, Input{Title: "Dune", Author: "Herbert"})

	if _, err := svc.UpdateBook(ctx, b.ID, Input{Title: "Dune", Author: "F. Herbert"}, "stale"); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	updated, err := svc.UpdateBook(ctx, b.ID, Input{Title: "Dune", Author: "F. Herbert"}, b.Checksum)
	if err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}
	if updated.Checksum == b.Checksum {
		t.Error("checksum should change with content")
	}
}

// interleavedStore lets another writer change the book right after the
// service has read it.
type interleavedStore struct {
	catalog.BookStore
	onGet func()
}

func (s *interleavedStore) Get(id int64) (models.Book, error) {
	b, err := s.BookStore.Get(id)
	if s.onGet != nil {
		hook := s.onGet
		s.onGet = nil
		hook()
	}
	return b, err
}

func TestUpdateBook_IfMatchLosesToConcurrentWriter(t *testing.T) {
	db := testutil.TestDB(t)
	store := &interleavedStore{BookStore: db}
	svc := NewService(store)
	ctx := context.Background()

	b, err := svc.CreateBook(ctx, Input{Title: "Dune", Author: "Herbert"})
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}

	// Both writers hold b.Checksum; the other one commits first.
	store.onGet = func() {
		if _, err := db.UpdateByID(b.ID, models.Book{Title: "Dune", Author: "Other Writer"}); err != nil {
			t.Errorf("concurrent write: %v", err)
		}
	}
	_, err = svc.UpdateBook(ctx, b.ID, Input{Title: "Dune", Author: "F. Herbert"}, b.Checksum)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	got, err := db.Get(b.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Author != "Other Writer" {
		t.Errorf("author = %q, the first committed write must survive", got.Author)
	}
}

func TestUpdateBook_IfMatchMissing(t *testing.T) {
	svc, _ := testService(t)
	_, err := svc.UpdateBook(context.Background(), 99, Input{Title: "X", Author: "Y"}, "abc")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateBook_Missing(t *testing.T) {
	svc, events := testService(t)
	_, err := svc.UpdateBook(context.Background(), 99, Input{Title: "X", Author: "Y"}, "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if len(*events) != 0 {
		t.Errorf("unexpected events: %+v", *events)
	}
}

func TestDeleteBook(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	b, _ := svc.CreateBook(ctx, Input{Title: "Dune", Author: "Herbert"})

	if err := svc.DeleteBook(ctx, b.ID); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}
	if err := svc.DeleteBook(ctx, b.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestDeleteByTitle(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	_, _ = svc.CreateBook(ctx, Input{Title: "Foo", Author: "Alice"})
	_, _ = svc.CreateBook(ctx, Input{Title: "Foo", Author: "Bob"})
	_, _ = svc.CreateBook(ctx, Input{Title: "Bar", Author: "Carol"})

	n, err := svc.DeleteByTitle(ctx, "Foo")
	if err != nil {
		t.Fatalf("DeleteByTitle: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
	if _, err := svc.DeleteByTitle(ctx, ""); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty title err = %v, want ErrValidation", err)
	}
}

func TestFindBook(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	b, _ := svc.CreateBook(ctx, Input{Title: "Dune", Author: "Herbert", Tags: "scifi"})

	got, err := svc.FindBook(ctx, "Dune", "Herbert", "scifi")
	if err != nil {
		t.Fatalf("FindBook: %v", err)
	}
	if got.ID != b.ID {
		t.Errorf("id = %d, want %d", got.ID, b.ID)
	}
	if _, err := svc.FindBook(ctx, "Dune", "Herbert", ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestImport_AllOrNothingValidation(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, []Input{
		{Title: "Dune", Author: "Herbert"},
		{Title: "", Author: "Nobody"},
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	books, _ := svc.Export(ctx)
	if len(books) != 0 {
		t.Errorf("partial import: %+v", books)
	}

	ids, err := svc.Import(ctx, []Input{
		{Title: "Dune", Author: "Herbert"},
		{Title: "Emma", Author: "Austen"},
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("ids = %v", ids)
	}
}

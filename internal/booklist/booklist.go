// Package booklist maintains the on-screen projection of the book store:
// an ordered list of display entries plus the currently selected entry.
//
// The list is disposable. It is rebuilt from the store after every change
// and never parsed back into records; each entry carries the id of the book
// it renders.
package booklist

import (
	"context"
	"errors"
	"fmt"

	"github.com/starford/shelf/internal/apperr"
	"github.com/starford/shelf/internal/models"
)

// NoSelection is the selection value meaning nothing is highlighted.
const NoSelection = -1

// User-facing notices.
const (
	NoticeSelectToEdit   = "Please select a book to edit"
	NoticeSelectToDelete = "Please select a book to delete"
	NoticeNotFound       = "That book no longer exists"
	NoticeInvalid        = "Title and author are required"
	NoticeFailure        = "Something went wrong, please try again"
	NoticeDeleted        = "Book deleted"

	ConfirmDeleteTitle = "Delete Book"
)

// ErrInvalidPosition is returned when a position does not address an entry.
var ErrInvalidPosition = errors.New("invalid list position")

// Store is the subset of the book store the presenter reads and writes.
type Store interface {
	ListAll() ([]models.Book, error)
	Get(id int64) (models.Book, error)
	DeleteByID(id int64) (bool, error)
}

// Confirmer asks the user a blocking yes/no question.
type Confirmer interface {
	Confirm(title, message string) bool
}

// Editor is the edit-record screen. It reports whether the record changed.
type Editor interface {
	Edit(ctx context.Context, id int64) (updated bool, err error)
}

// Adder is the add-record screen. It reports whether a record was created.
type Adder interface {
	Add(ctx context.Context) (added bool, err error)
}

// Notifier shows a short, non-fatal message to the user.
type Notifier interface {
	Notify(msg string)
}

// Entry is one display line of the list.
type Entry struct {
	ID      int64
	Title   string
	Summary string
}

// Presenter mirrors the store into a display list and tracks selection.
// It is not safe for concurrent use.
type Presenter struct {
	store   Store
	confirm Confirmer
	notify  Notifier

	entries  []Entry
	selected int
}

// New creates a presenter with an empty list and no selection. Call Refresh
// before first display.
func New(store Store, confirm Confirmer, notify Notifier) *Presenter {
	return &Presenter{
		store:    store,
		confirm:  confirm,
		notify:   notify,
		selected: NoSelection,
	}
}

// Entries returns a copy of the current display list.
func (p *Presenter) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Len returns the number of entries.
func (p *Presenter) Len() int {
	return len(p.entries)
}

// Selected returns the selected position or NoSelection.
func (p *Presenter) Selected() int {
	return p.selected
}

// Refresh discards the list and reloads it from the store, keeping store
// order. The selection follows the selected book to its new position and is
// cleared when that book is gone. On failure the previous list is left intact.
func (p *Presenter) Refresh() error {
	books, err := p.store.ListAll()
	if err != nil {
		return p.fail("refresh", err)
	}

	selectedID := int64(0)
	if p.selected != NoSelection {
		selectedID = p.entries[p.selected].ID
	}

	entries := make([]Entry, len(books))
	p.selected = NoSelection
	for i, b := range books {
		entries[i] = Entry{ID: b.ID, Title: b.Title, Summary: b.Summary()}
		if b.ID == selectedID {
			p.selected = i
		}
	}
	p.entries = entries
	return nil
}

// Select records position as the target of edit/delete actions.
// NoSelection clears it.
func (p *Presenter) Select(position int) error {
	if position == NoSelection {
		p.selected = NoSelection
		return nil
	}
	if !p.valid(position) {
		return fmt.Errorf("booklist: select %d of %d: %w", position, len(p.entries), ErrInvalidPosition)
	}
	p.selected = position
	return nil
}

// RequestAdd runs the add screen and refreshes when it created a record.
func (p *Presenter) RequestAdd(ctx context.Context, add Adder) error {
	added, err := add.Add(ctx)
	if err != nil {
		return p.fail("add", err)
	}
	if !added {
		return nil
	}
	return p.Refresh()
}

// RequestEdit hands the selected book to the edit screen and refreshes if
// the screen reports an update.
func (p *Presenter) RequestEdit(ctx context.Context, edit Editor) error {
	if p.selected == NoSelection {
		p.say(NoticeSelectToEdit)
		return fmt.Errorf("booklist: edit: %w", apperr.ErrNothingSelected)
	}
	entry := p.entries[p.selected]
	if _, err := p.store.Get(entry.ID); err != nil {
		return p.fail("edit", err)
	}
	updated, err := edit.Edit(ctx, entry.ID)
	if err != nil {
		return p.fail("edit", err)
	}
	if !updated {
		return nil
	}
	return p.Refresh()
}

// RequestDeleteSelected deletes the selected book after confirmation and
// clears the selection.
func (p *Presenter) RequestDeleteSelected(ctx context.Context) error {
	if p.selected == NoSelection {
		p.say(NoticeSelectToDelete)
		return fmt.Errorf("booklist: delete: %w", apperr.ErrNothingSelected)
	}
	return p.deleteAt(ctx, p.selected)
}

// RequestDeleteAt deletes the book at position after confirmation. It does
// not require the position to be selected.
func (p *Presenter) RequestDeleteAt(ctx context.Context, position int) error {
	if !p.valid(position) {
		return fmt.Errorf("booklist: delete %d of %d: %w", position, len(p.entries), ErrInvalidPosition)
	}
	return p.deleteAt(ctx, position)
}

// deleteAt confirms, deletes by id and drops the entry. Any successful
// delete clears the selection, whichever path triggered it.
func (p *Presenter) deleteAt(_ context.Context, position int) error {
	entry := p.entries[position]
	msg := fmt.Sprintf("Are you sure you want to delete the book: %s?", entry.Title)
	if !p.confirm.Confirm(ConfirmDeleteTitle, msg) {
		return nil
	}

	ok, err := p.store.DeleteByID(entry.ID)
	if err != nil {
		return p.fail("delete", err)
	}
	if !ok {
		// Someone else removed it; the list is stale.
		gone := fmt.Errorf("booklist: delete: book %d: %w", entry.ID, apperr.ErrNotFound)
		if err := p.Refresh(); err != nil {
			// Refresh already told the user.
			p.selected = NoSelection
			return errors.Join(gone, err)
		}
		p.selected = NoSelection
		return p.fail("delete", fmt.Errorf("book %d: %w", entry.ID, apperr.ErrNotFound))
	}

	p.entries = append(p.entries[:position], p.entries[position+1:]...)
	p.selected = NoSelection
	p.say(NoticeDeleted)
	return nil
}

func (p *Presenter) valid(position int) bool {
	return position >= 0 && position < len(p.entries)
}

func (p *Presenter) say(msg string) {
	if p.notify != nil {
		p.notify.Notify(msg)
	}
}

// fail turns err into a user notice and returns it wrapped for the caller.
func (p *Presenter) fail(op string, err error) error {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		p.say(NoticeNotFound)
	case errors.Is(err, apperr.ErrValidation):
		p.say(NoticeInvalid)
	default:
		p.say(NoticeFailure)
	}
	return fmt.Errorf("booklist: %s: %w", op, err)
}

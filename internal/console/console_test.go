package console

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/shelf/internal/booklist"
	"github.com/starford/shelf/internal/bookservice"
	"github.com/starford/shelf/internal/catalog"
	"github.com/starford/shelf/internal/models"
	"github.com/starford/shelf/internal/testutil"
)

func run(t *testing.T, db *catalog.DB, script string) (*Console, string) {
	t.Helper()
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := New(db, bookservice.NewService(db), strings.NewReader(script), &out, logger)
	require.NoError(t, c.Run(context.Background()))
	return c, out.String()
}

func seedTwo(t *testing.T, db *catalog.DB) []int64 {
	return testutil.Seed(t, db,
		models.Book{Title: "Dune", Author: "Frank Herbert", Tags: "scifi"},
		models.Book{Title: "Emma", Author: "Jane Austen"},
	)
}

func TestRun_ListsOnStart(t *testing.T) {
	db := testutil.TestDB(t)
	seedTwo(t, db)

	_, out := run(t, db, "quit\n")
	assert.Contains(t, out, "1. Dune - Frank Herbert - scifi")
	assert.Contains(t, out, "2. Emma - Jane Austen - ")
}

func TestRun_EmptyStore(t *testing.T) {
	db := testutil.TestDB(t)
	_, out := run(t, db, "")
	assert.Contains(t, out, "(no books)")
}

func TestAdd(t *testing.T) {
	db := testutil.TestDB(t)
	c, _ := run(t, db, "add\nNeuromancer\nWilliam Gibson\ncyberpunk\nquit\n")

	books, err := db.ListAll()
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Neuromancer", books[0].Title)
	assert.Equal(t, 1, c.Presenter().Len())
}

func TestAdd_InvalidNotifies(t *testing.T) {
	db := testutil.TestDB(t)
	_, out := run(t, db, "add\n\nWilliam Gibson\n\nquit\n")

	assert.Contains(t, out, "! "+booklist.NoticeInvalid)
	n, err := db.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSelectMarksEntry(t *testing.T) {
	db := testutil.TestDB(t)
	seedTwo(t, db)

	c, out := run(t, db, "select 2\nquit\n")
	assert.Equal(t, 1, c.Presenter().Selected())
	assert.Contains(t, out, "*   2. Emma")
}

func TestSelect_OutOfRange(t *testing.T) {
	db := testutil.TestDB(t)
	seedTwo(t, db)

	c, out := run(t, db, "select 9\nselect x\nquit\n")
	assert.Equal(t, booklist.NoSelection, c.Presenter().Selected())
	assert.Contains(t, out, "! No book at that position")
	assert.Contains(t, out, "! Expected a book number")
}

func TestEdit_KeepsBlankFields(t *testing.T) {
	db := testutil.TestDB(t)
	ids := seedTwo(t, db)

	run(t, db, "select 1\nedit\nDune Messiah\n\n\nquit\n")

	got, err := db.Get(ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", got.Title)
	assert.Equal(t, "Frank Herbert", got.Author)
	assert.Equal(t, "scifi", got.Tags)
}

func TestEdit_ClearTags(t *testing.T) {
	db := testutil.TestDB(t)
	ids := seedTwo(t, db)

	run(t, db, "select 1\nedit\n\n\n-\nquit\n")

	got, err := db.Get(ids[0])
	require.NoError(t, err)
	assert.Equal(t, "", got.Tags)
}

func TestEdit_NothingSelected(t *testing.T) {
	db := testutil.TestDB(t)
	seedTwo(t, db)

	_, out := run(t, db, "edit\nquit\n")
	assert.Contains(t, out, "! "+booklist.NoticeSelectToEdit)
}

func TestDelete_ConfirmYes(t *testing.T) {
	db := testutil.TestDB(t)
	seedTwo(t, db)

	c, out := run(t, db, "select 1\ndelete\ny\nquit\n")
	assert.Contains(t, out, booklist.ConfirmDeleteTitle)
	assert.Contains(t, out, "Are you sure you want to delete the book: Dune?")
	assert.Contains(t, out, "! "+booklist.NoticeDeleted)
	assert.Equal(t, booklist.NoSelection, c.Presenter().Selected())

	n, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDelete_Declined(t *testing.T) {
	db := testutil.TestDB(t)
	seedTwo(t, db)

	c, _ := run(t, db, "select 1\ndelete\nn\nquit\n")
	assert.Equal(t, 0, c.Presenter().Selected())

	n, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDelete_NothingSelected(t *testing.T) {
	db := testutil.TestDB(t)
	seedTwo(t, db)

	_, out := run(t, db, "delete\nquit\n")
	assert.Contains(t, out, "! "+booklist.NoticeSelectToDelete)
}

func TestRm(t *testing.T) {
	db := testutil.TestDB(t)
	ids := seedTwo(t, db)

	_, out := run(t, db, "rm 2\nyes\nrm 7\nquit\n")
	assert.Contains(t, out, "delete the book: Emma?")
	assert.Contains(t, out, "! No book at that position")

	books, err := db.ListAll()
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, ids[0], books[0].ID)
}

func TestRefreshPicksUpExternalChanges(t *testing.T) {
	db := testutil.TestDB(t)
	seedTwo(t, db)

	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	in, w := io.Pipe()
	c := New(db, bookservice.NewService(db), in, &out, logger)

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	_, err := io.WriteString(w, "list\n")
	require.NoError(t, err)
	testutil.Seed(t, db, models.Book{Title: "Ubik", Author: "Philip K. Dick"})
	_, err = io.WriteString(w, "refresh\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, <-done)

	assert.Equal(t, 3, c.Presenter().Len())
}

func TestUnknownCommand(t *testing.T) {
	db := testutil.TestDB(t)
	_, out := run(t, db, "frobnicate\nhelp\n")
	assert.Contains(t, out, `Unknown command "frobnicate"`)
	assert.Contains(t, out, "select N")
}

func TestAsk(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{" YES \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tc := range cases {
		var out bytes.Buffer
		got := Ask(strings.NewReader(tc.input), &out, "Delete Book", "Really?")
		assert.Equal(t, tc.want, got, "input %q", tc.input)
		assert.Contains(t, out.String(), "Delete Book\nReally?\n[y/N] ")
	}
}

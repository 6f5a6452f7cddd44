package internal

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/shelf/internal/bookservice"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "books", "shelf.db")
	return cfg
}

func TestNewApplication_RequiresConfig(t *testing.T) {
	if _, err := newApplication(nil); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestNewApplication_DBPathOverride(t *testing.T) {
	cfg := testConfig(t)
	app, err := newApplication([]Option{WithConfig(cfg), WithDBPath("/tmp/other.db")})
	if err != nil {
		t.Fatal(err)
	}
	if app.config.SQLite.Path != "/tmp/other.db" {
		t.Errorf("sqlite path = %q", app.config.SQLite.Path)
	}
}

func TestExec_SharesCatalogAcrossRuns(t *testing.T) {
	cfg := testConfig(t)
	opts := []Option{WithConfig(cfg), WithLogOutput(io.Discard)}
	ctx := context.Background()

	err := Exec(ctx, func(ctx context.Context, svc *bookservice.Service) error {
		_, err := svc.CreateBook(ctx, bookservice.Input{Title: "Dune", Author: "Frank Herbert"})
		return err
	}, opts...)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var n int
	err = Exec(ctx, func(ctx context.Context, svc *bookservice.Service) error {
		books, err := svc.ListBooks(ctx)
		n = len(books)
		return err
	}, opts...)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if n != 1 {
		t.Errorf("books = %d, want 1", n)
	}
}

func TestBrowse_ScriptedSession(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer
	in := strings.NewReader("add\nEmma\nJane Austen\nclassic\nlist\nquit\n")

	err := Browse(context.Background(),
		WithConfig(cfg),
		WithLogOutput(io.Discard),
		WithTerminal(in, &out),
	)
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}
	if !strings.Contains(out.String(), "Emma - Jane Austen - classic") {
		t.Errorf("output missing new book:\n%s", out.String())
	}
}

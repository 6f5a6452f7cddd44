// Package bookfile reads and writes the library as a YAML document.
//
//	books:
//	  - title: Dune
//	    author: Frank Herbert
//	    tags: scifi
package bookfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/starford/shelf/internal/models"
)

// Document is the top-level YAML shape.
type Document struct {
	Books []models.Book `yaml:"books"`
}

// Decode parses a YAML document. Ids present in the input are dropped; the
// store assigns new ones on import.
func Decode(r io.Reader) ([]models.Book, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []models.Book{}, nil
		}
		return nil, fmt.Errorf("bookfile: decode: %w", err)
	}
	out := make([]models.Book, len(doc.Books))
	for i, b := range doc.Books {
		b.ID = 0
		out[i] = b
	}
	return out, nil
}

// Encode writes books as a YAML document.
func Encode(w io.Writer, books []models.Book) error {
	if books == nil {
		books = []models.Book{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Document{Books: books}); err != nil {
		return fmt.Errorf("bookfile: encode: %w", err)
	}
	return enc.Close()
}

// ReadFile decodes the document at path.
func ReadFile(path string) ([]models.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bookfile: open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// WriteFile atomically writes books to path: tmp file → fsync → rename.
func WriteFile(path string, books []models.Book) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("bookfile: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".shelf-tmp-*")
	if err != nil {
		return fmt.Errorf("bookfile: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err := Encode(tmp, books); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("bookfile: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("bookfile: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("bookfile: rename: %w", err)
	}
	success = true
	return nil
}

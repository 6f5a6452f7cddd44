// Package models defines the domain types for shelf.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SummarySeparator joins the fields of a book in its display summary.
const SummarySeparator = " - "

// MaxFieldLength bounds every text field of a book, in runes.
const MaxFieldLength = 512

// Book is a single record in the personal library.
type Book struct {
	ID     int64  `json:"id" yaml:"id,omitempty"`
	Title  string `json:"title" yaml:"title"`
	Author string `json:"author" yaml:"author"`
	Tags   string `json:"tags" yaml:"tags"`
}

// Normalize trims surrounding whitespace from every field.
func (b *Book) Normalize() {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.Tags = strings.TrimSpace(b.Tags)
}

// Validate checks the fields a book must carry before it reaches the store.
func (b Book) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Title, validation.Required, validation.RuneLength(1, MaxFieldLength)),
		validation.Field(&b.Author, validation.Required, validation.RuneLength(1, MaxFieldLength)),
		validation.Field(&b.Tags, validation.RuneLength(0, MaxFieldLength)),
	)
}

// Summary renders the book as a single display line: "title - author - tags".
func (b Book) Summary() string {
	return b.Title + SummarySeparator + b.Author + SummarySeparator + b.Tags
}

// Checksum returns the hex SHA-256 of the mutable fields. It changes whenever
// title, author or tags change and is used as an entity tag.
func (b Book) Checksum() string {
	h := sha256.New()
	h.Write([]byte(b.Title))
	h.Write([]byte{0})
	h.Write([]byte(b.Author))
	h.Write([]byte{0})
	h.Write([]byte(b.Tags))
	return hex.EncodeToString(h.Sum(nil))
}

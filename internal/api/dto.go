package api

import "github.com/starford/shelf/internal/bookservice"

// BookRequest is the request body for creating or updating a book.
type BookRequest struct {
	Title  string `json:"title" example:"Dune" validate:"required"`
	Author string `json:"author" example:"Frank Herbert" validate:"required"`
	Tags   string `json:"tags" example:"scifi,classic"`
}

func (r BookRequest) input() bookservice.Input {
	return bookservice.Input{Title: r.Title, Author: r.Author, Tags: r.Tags}
}

// BookDetail is the single book response type (aliased from the domain layer).
type BookDetail = bookservice.BookDetail

// BookListResponse wraps the full book listing.
type BookListResponse struct {
	Books []BookDetail `json:"books" validate:"required"`
	Total int          `json:"total" example:"42" validate:"required"`
}

// DeleteByTitleResponse reports how many books a title delete removed.
type DeleteByTitleResponse struct {
	Deleted int64 `json:"deleted" example:"2" validate:"required"`
}

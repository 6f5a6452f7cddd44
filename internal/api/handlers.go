package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/shelf/internal/apperr"
	"github.com/starford/shelf/internal/bookservice"
)

const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *bookservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *bookservice.Service) *Handler {
	return &Handler{svc: svc}
}

// bookID parses the {id} URL parameter.
func bookID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// writeError maps domain errors onto status codes. Storage and unknown
// errors are logged and hidden behind a generic message.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusBadRequest, errResponse{Error: "validation failed", Fields: fieldErrors(verrs)})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func decodeBook(w http.ResponseWriter, r *http.Request) (BookRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return req, false
	}
	return req, true
}

// ListBooks handles GET /api/books.
//
//	@Summary		List every book in store order
//	@Tags			books
//	@Produce		json
//	@Success		200		{object}	BookListResponse
//	@Security		BearerAuth
//	@Router			/books [get]
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.ListBooks(r.Context())
	if err != nil {
		writeError(w, "list books", err)
		return
	}
	writeJSON(w, http.StatusOK, BookListResponse{Books: books, Total: len(books)})
}

// GetBook handles GET /api/books/{id}.
//
//	@Summary		Get a single book by id
//	@Tags			books
//	@Produce		json
//	@Param			id	path		int	true	"Book id"
//	@Success		200	{object}	BookDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/books/{id} [get]
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid book id"))
		return
	}
	book, err := h.svc.GetBook(r.Context(), id)
	if err != nil {
		writeError(w, "get book", err)
		return
	}
	w.Header().Set("ETag", `"`+book.Checksum+`"`)
	writeJSON(w, http.StatusOK, book)
}

// FindBook handles GET /api/books/lookup.
//
//	@Summary		Resolve exact title, author and tags to a book
//	@Tags			books
//	@Produce		json
//	@Param			title	query		string	true	"Exact title"
//	@Param			author	query		string	true	"Exact author"
//	@Param			tags	query		string	false	"Exact tags"
//	@Success		200		{object}	BookDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/books/lookup [get]
func (h *Handler) FindBook(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	book, err := h.svc.FindBook(r.Context(), q.Get("title"), q.Get("author"), q.Get("tags"))
	if err != nil {
		writeError(w, "find book", err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// CreateBook handles POST /api/books.
//
//	@Summary		Add a book
//	@Tags			books
//	@Accept			json
//	@Produce		json
//	@Param			body	body		BookRequest	true	"Book to add"
//	@Success		201		{object}	BookDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/books [post]
func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBook(w, r)
	if !ok {
		return
	}
	book, err := h.svc.CreateBook(r.Context(), req.input())
	if err != nil {
		writeError(w, "create book", err)
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

// UpdateBook handles PUT /api/books/{id}.
//
//	@Summary		Overwrite a book with optional optimistic concurrency
//	@Tags			books
//	@Accept			json
//	@Produce		json
//	@Param			id			path		int			true	"Book id"
//	@Param			If-Match	header		string		false	"Checksum from a previous read"
//	@Param			body		body		BookRequest	true	"New fields"
//	@Success		200			{object}	BookDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/books/{id} [put]
func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid book id"))
		return
	}
	req, ok := decodeBook(w, r)
	if !ok {
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	book, err := h.svc.UpdateBook(r.Context(), id, req.input(), ifMatch)
	if err != nil {
		writeError(w, "update book", err)
		return
	}
	w.Header().Set("ETag", `"`+book.Checksum+`"`)
	writeJSON(w, http.StatusOK, book)
}

// DeleteBook handles DELETE /api/books/{id}.
//
//	@Summary		Delete a book
//	@Tags			books
//	@Param			id	path	int	true	"Book id"
//	@Success		204	"Book deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/books/{id} [delete]
func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid book id"))
		return
	}
	if err := h.svc.DeleteBook(r.Context(), id); err != nil {
		writeError(w, "delete book", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteByTitle handles DELETE /api/books?title=.
//
//	@Summary		Delete every book with the exact title
//	@Tags			books
//	@Produce		json
//	@Param			title	query		string	true	"Exact title"
//	@Success		200		{object}	DeleteByTitleResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/books [delete]
func (h *Handler) DeleteByTitle(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'title' is required"))
		return
	}
	n, err := h.svc.DeleteByTitle(r.Context(), title)
	if err != nil {
		writeError(w, "delete by title", err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteByTitleResponse{Deleted: n})
}

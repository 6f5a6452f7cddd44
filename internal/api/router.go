package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/shelf/internal/bookservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *bookservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/books", h.ListBooks)
	r.Post("/books", h.CreateBook)
	r.Delete("/books", h.DeleteByTitle)
	r.Get("/books/lookup", h.FindBook)
	r.Get("/books/{id}", h.GetBook)
	r.Put("/books/{id}", h.UpdateBook)
	r.Delete("/books/{id}", h.DeleteBook)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

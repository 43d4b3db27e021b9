package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/samanthvittal/bookmark-browser/internal/httpserver/deps"
	"github.com/samanthvittal/bookmark-browser/internal/httpserver/handlers"
	"github.com/samanthvittal/bookmark-browser/internal/httpserver/mw"
)

func init() { Register("events", registerEvents) }

// The websocket stays open for the life of the page, so it gets no request timeout.
func registerEvents(r chi.Router, d deps.Deps) {
	r.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Get("/api/events", handlers.Events(d))
}

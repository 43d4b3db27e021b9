package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/samanthvittal/bookmark-browser/internal/dispatch"
	"github.com/samanthvittal/bookmark-browser/internal/httpserver/deps"
	"github.com/samanthvittal/bookmark-browser/internal/httpserver/handlers"
	"github.com/samanthvittal/bookmark-browser/internal/httpserver/mw"
)

func init() { Register("api", registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	r.Group(func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		if d.RequestTimeout > 0 {
			r.Use(middleware.Timeout(d.RequestTimeout))
		}

		r.Get("/api/document", handlers.Document(d))
		r.Get("/api/status", handlers.Status(d))
		r.Get("/api/infra", handlers.Infra(d))
		r.Post("/api/commands", handlers.Commands(d))
		r.Post("/api/push", handlers.Submit(d, dispatch.Push{}))
		r.Post("/api/pull", handlers.Submit(d, dispatch.Pull{}))
		r.Put("/api/settings", handlers.SaveSettings(d))
	})
}

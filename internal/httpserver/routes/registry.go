package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/samanthvittal/bookmark-browser/internal/httpserver/deps"
	"github.com/samanthvittal/bookmark-browser/internal/logger"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type group struct {
	name string
	reg  Registrar
	mws  []Middleware
}

var groups []group

// Register adds a named route group with optional middlewares shared by its routes.
// Groups are mounted in registration order, which is file order within this package.
func Register(name string, reg Registrar, mws ...Middleware) {
	groups = append(groups, group{name: name, reg: reg, mws: mws})
}

// RegisterAll is called once from server.New().
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, g := range groups {
		if len(g.mws) == 0 {
			g.reg(r, d)
		} else {
			g.reg(r.With(g.mws...), d)
		}
		d.Logger.Debug("routes registered", logger.String("group", g.name))
	}
}

package handlers

import (
	"net/http"

	"github.com/samanthvittal/bookmark-browser/internal/dispatch"
	"github.com/samanthvittal/bookmark-browser/internal/domain"
	"github.com/samanthvittal/bookmark-browser/internal/httpserver/deps"
)

type statusResponse struct {
	Status   dispatch.Status       `json:"status"`
	InFlight bool                  `json:"in_flight"`
	Synced   bool                  `json:"synced"`
	Settings domain.PublicSettings `json:"settings"`
}

// Document returns the current bookmark tree.
func Document(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := d.Dispatcher.Snapshot(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "dispatcher unavailable")
			return
		}
		writeJSON(w, http.StatusOK, snap.Document)
	}
}

// Status returns the sync indicator and the redacted settings.
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := d.Dispatcher.Snapshot(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "dispatcher unavailable")
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{
			Status:   snap.Status,
			InFlight: snap.InFlight,
			Synced:   snap.Synced,
			Settings: snap.Settings,
		})
	}
}

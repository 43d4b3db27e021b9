package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/samanthvittal/bookmark-browser/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool `json:"ready"`
}

// Readyz is ready once the dispatcher loop answers queries.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()

		if _, err := d.Dispatcher.Snapshot(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/samanthvittal/bookmark-browser/internal/httpserver/deps"
)

type componentStatus struct {
	OK        bool   `json:"ok"`
	Mode      string `json:"mode,omitempty"`
	Impact    string `json:"impact,omitempty"`
	Error     string `json:"error,omitempty"`
	Folders   *int   `json:"folders,omitempty"`
	Bookmarks *int   `json:"bookmarks,omitempty"`
}

type infraResponse struct {
	SyncMode   string                     `json:"sync_mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of local persistence, the remote configuration and the sync loop.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := d.Dispatcher.Snapshot(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "dispatcher unavailable")
			return
		}

		folders, bookmarks := len(snap.Document.Folders), snap.Document.BookmarkCount()
		components := map[string]componentStatus{
			"document": {OK: true, Folders: &folders, Bookmarks: &bookmarks},
			"store":    checkStore(r.Context(), d),
			"remote":   remoteStatus(snap.Settings.HasCredential, snap.Settings.RemoteLocation != ""),
			"sync":     syncStatus(snap.InFlight, snap.Synced),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			SyncMode:   determineSyncMode(components),
			Components: components,
		})
	}
}

func determineSyncMode(components map[string]componentStatus) string {
	if store, ok := components["store"]; ok && !store.OK {
		return "degraded" // local saves failing
	}
	if remote, ok := components["remote"]; ok && !remote.OK {
		return "local-only"
	}
	return "synced"
}

func remoteStatus(hasCredential, hasLocation bool) componentStatus {
	switch {
	case !hasCredential:
		return componentStatus{OK: false, Mode: "unconfigured", Impact: "sync-disabled", Error: "no credential"}
	case !hasLocation:
		return componentStatus{OK: false, Mode: "unconfigured", Impact: "sync-disabled", Error: "no location"}
	}
	return componentStatus{OK: true, Mode: "configured"}
}

func syncStatus(inFlight, synced bool) componentStatus {
	mode := "never-synced"
	switch {
	case inFlight:
		mode = "in-flight"
	case synced:
		mode = "idle"
	}
	return componentStatus{OK: true, Mode: mode}
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{OK: true, Mode: d.Backend}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   d.Backend,
			Impact: "local-saves-failing",
			Error:  err.Error(),
		}
	}
	return componentStatus{OK: true, Mode: d.Backend}
}

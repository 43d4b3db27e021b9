package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/samanthvittal/bookmark-browser/internal/dispatch"
	"github.com/samanthvittal/bookmark-browser/internal/httpserver/deps"
	"github.com/samanthvittal/bookmark-browser/internal/logger"
)

const maxBodyBytes = 64 << 10

// Commands accepts one sidebar command per request.
func Commands(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		cmd, err := dispatch.DecodeCommand(body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		submit(w, r, d, cmd)
	}
}

// Submit returns a handler that enqueues a fixed command.
func Submit(d deps.Deps, cmd dispatch.Command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submit(w, r, d, cmd)
	}
}

type settingsRequest struct {
	RemoteCredential *string `json:"remote_credential"`
	RemoteLocation   *string `json:"remote_location"`
}

// SaveSettings replaces the remote credential and location. Both fields are
// required; send empty strings to clear them.
func SaveSettings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req settingsRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid settings body")
			return
		}
		if req.RemoteCredential == nil || req.RemoteLocation == nil {
			writeError(w, http.StatusBadRequest, "remote_credential and remote_location are required")
			return
		}
		submit(w, r, d, dispatch.SaveSettings{
			Credential: *req.RemoteCredential,
			Location:   *req.RemoteLocation,
		})
	}
}

func submit(w http.ResponseWriter, r *http.Request, d deps.Deps, cmd dispatch.Command) {
	if err := d.Dispatcher.Submit(r.Context(), cmd); err != nil {
		if !errors.Is(err, dispatch.ErrStopped) {
			d.Logger.Warn("command not accepted", logger.Error(err))
		}
		writeError(w, http.StatusServiceUnavailable, "dispatcher unavailable")
		return
	}
	writeJSON(w, http.StatusAccepted, acceptedResponse{Accepted: true})
}

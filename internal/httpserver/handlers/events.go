package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/samanthvittal/bookmark-browser/internal/dispatch"
	"github.com/samanthvittal/bookmark-browser/internal/httpserver/deps"
	"github.com/samanthvittal/bookmark-browser/internal/logger"
)

const writeTimeout = 5 * time.Second

type snapshotMessage struct {
	Type     string            `json:"type"`
	Snapshot dispatch.Snapshot `json:"snapshot"`
}

// Events streams notifications over a websocket. The first message is a
// full snapshot; every later message is a dispatch.Notification.
func Events(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: d.AllowedHosts,
		})
		if err != nil {
			d.Logger.Warn("websocket accept failed", logger.Error(err))
			return
		}
		defer func() { _ = conn.CloseNow() }()

		// Subscribe before the snapshot so nothing between the two is lost.
		events, cancel := d.Hub.Subscribe()
		defer cancel()

		ctx := conn.CloseRead(r.Context())

		snap, err := d.Dispatcher.Snapshot(ctx)
		if err != nil {
			_ = conn.Close(websocket.StatusInternalError, "snapshot unavailable")
			return
		}
		if err := write(ctx, conn, snapshotMessage{Type: "snapshot", Snapshot: snap}); err != nil {
			return
		}
		d.Logger.Debug("websocket client connected", logger.Int("subscribers", d.Hub.Subscribers()))

		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-events:
				if !ok {
					_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
					return
				}
				if err := write(ctx, conn, n); err != nil {
					d.Logger.Debug("websocket write failed", logger.Error(err))
					return
				}
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, v any) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, v)
}

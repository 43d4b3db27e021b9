package deps

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/samanthvittal/bookmark-browser/internal/dispatch"
	"github.com/samanthvittal/bookmark-browser/internal/logger"
)

// Dispatcher is the event loop as seen by HTTP handlers: they submit commands
// and read snapshots, nothing else.
type Dispatcher interface {
	Submit(ctx context.Context, cmd dispatch.Command) error
	Snapshot(ctx context.Context) (dispatch.Snapshot, error)
}

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time // for testing, defaults to time.Now
	AllowedHosts   []string         // Host headers allowed to access the server
	RequestTimeout time.Duration    // per-request timeout for the JSON API
	Dispatcher     Dispatcher       // owner of all bookmark state
	Hub            *dispatch.Hub    // notification fan-out for /api/events
	Backend        string           // local persistence backend name
	RedisClient    *redis.Client    // nil unless Backend is redis
}

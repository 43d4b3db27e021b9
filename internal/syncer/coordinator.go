// Package syncer coordinates push and pull against the remote gateway.
//
// A Coordinator is owned by a single goroutine (the dispatcher loop). Network
// calls run on worker goroutines that never touch Coordinator state: they hand
// a Result to the post function and the owner feeds it back through Complete.
package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/samanthvittal/bookmark-browser/internal/domain"
	"github.com/samanthvittal/bookmark-browser/internal/logger"
	"github.com/samanthvittal/bookmark-browser/internal/remote"
)

// Precondition failures reported by Push and Pull.
var (
	ErrNoCredential      = errors.New("no remote credential configured")
	ErrNoLocation        = errors.New("no remote location configured")
	ErrAlreadyInProgress = errors.New("a sync is already in progress")
)

// Op identifies the kind of sync operation.
type Op int

const (
	OpPush Op = iota
	OpPull
)

func (o Op) String() string {
	if o == OpPull {
		return "pull"
	}
	return "push"
}

// Result is posted by a worker when its network call finishes.
type Result struct {
	Op       Op
	Auto     bool
	Location string
	Token    remote.Token
	Document domain.Document // set by successful pulls only
	Err      error
}

// Coordinator tracks the last observed remote version and enforces that at
// most one sync is outstanding. It is not safe for concurrent use.
type Coordinator struct {
	gateway remote.Gateway
	post    func(Result)
	timeout time.Duration
	logger  logger.Logger

	lastToken     remote.Token
	tokenLocation string
	inFlight      bool
}

// DefaultTimeout bounds a single push or pull when New gets no timeout.
const DefaultTimeout = 15 * time.Second

// New creates a Coordinator. post must not block for long; it is called from
// worker goroutines.
func New(gateway remote.Gateway, post func(Result), timeout time.Duration, log logger.Logger) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Coordinator{
		gateway: gateway,
		post:    post,
		timeout: timeout,
		logger:  log,
	}
}

// LastToken returns the version observed by the last successful sync.
func (c *Coordinator) LastToken() remote.Token {
	return c.lastToken
}

// Restore seeds the token recorded by an earlier run. It is ignored once a
// sync has completed.
func (c *Coordinator) Restore(location string, token remote.Token) {
	if c.lastToken != "" || location == "" || token == "" {
		return
	}
	c.lastToken = token
	c.tokenLocation = location
}

// State returns the last token and the location it belongs to.
func (c *Coordinator) State() (location string, token remote.Token) {
	return c.tokenLocation, c.lastToken
}

// InFlight reports whether a worker is outstanding.
func (c *Coordinator) InFlight() bool {
	return c.inFlight
}

// Push starts a background store of doc. ctx bounds the worker's lifetime.
func (c *Coordinator) Push(ctx context.Context, doc domain.Document, settings domain.Settings) error {
	if err := c.check(settings); err != nil {
		return err
	}
	c.startPush(ctx, doc, settings, false)
	return nil
}

// Pull starts a background fetch. The owner replaces its Document when the
// Result arrives.
func (c *Coordinator) Pull(ctx context.Context, settings domain.Settings) error {
	if err := c.check(settings); err != nil {
		return err
	}

	c.inFlight = true
	credential, location := settings.RemoteCredential, settings.RemoteLocation
	c.logger.Debug("pull started", logger.String("location", location))

	gw := c.gateway
	c.spawn(ctx, func(ctx context.Context) Result {
		doc, token, err := gw.Fetch(ctx, credential, location)
		return Result{Op: OpPull, Location: location, Token: token, Document: doc, Err: err}
	})
	return nil
}

// AutoSync pushes doc if the settings allow it and nothing is in flight.
// It never reports an error; started tells whether a push was dispatched.
func (c *Coordinator) AutoSync(ctx context.Context, doc domain.Document, settings domain.Settings) (started bool) {
	if err := c.check(settings); err != nil {
		c.logger.Debug("autosync skipped", logger.String("reason", err.Error()))
		return false
	}
	c.startPush(ctx, doc, settings, true)
	return true
}

// Complete records a finished operation. The token only moves on success,
// except that a pull finding nothing at the token's location drops it.
func (c *Coordinator) Complete(res Result) {
	c.inFlight = false
	if res.Err != nil {
		if res.Op == OpPull && errors.Is(res.Err, remote.ErrNotFound) && res.Location == c.tokenLocation {
			c.lastToken, c.tokenLocation = "", ""
		}
		c.logger.Warn("sync failed",
			logger.String("op", res.Op.String()),
			logger.Bool("auto", res.Auto),
			logger.String("kind", remote.KindOf(res.Err).String()),
			logger.Error(res.Err))
		return
	}
	c.lastToken = res.Token
	c.tokenLocation = res.Location
	c.logger.Info("sync completed",
		logger.String("op", res.Op.String()),
		logger.Bool("auto", res.Auto),
		logger.String("location", res.Location))
}

func (c *Coordinator) check(settings domain.Settings) error {
	switch {
	case !settings.HasCredential():
		return ErrNoCredential
	case !settings.HasLocation():
		return ErrNoLocation
	case c.inFlight:
		return ErrAlreadyInProgress
	}
	return nil
}

// tokenFor returns the last token only if it was observed at location; a
// token from another repository means nothing here.
func (c *Coordinator) tokenFor(location string) remote.Token {
	if c.tokenLocation != location {
		return ""
	}
	return c.lastToken
}

func (c *Coordinator) startPush(ctx context.Context, doc domain.Document, settings domain.Settings, auto bool) {
	c.inFlight = true
	credential, location := settings.RemoteCredential, settings.RemoteLocation
	expected := c.tokenFor(location)
	doc = doc.Clone()
	c.logger.Debug("push started",
		logger.String("location", location),
		logger.Bool("auto", auto),
		logger.Bool("has_token", expected != ""))

	gw := c.gateway
	c.spawn(ctx, func(ctx context.Context) Result {
		token, err := gw.Store(ctx, credential, location, doc, expected)
		return Result{Op: OpPush, Auto: auto, Location: location, Token: token, Err: err}
	})
}

func (c *Coordinator) spawn(parent context.Context, work func(context.Context) Result) {
	post, timeout := c.post, c.timeout
	go func() {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		post(work(ctx))
	}()
}

// UserMessage describes err for the status indicator.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoCredential):
		return "Add a remote credential in settings first."
	case errors.Is(err, ErrNoLocation):
		return "Add a remote location in settings first."
	case errors.Is(err, ErrAlreadyInProgress):
		return "A sync is already running."
	default:
		return remote.UserMessage(err)
	}
}

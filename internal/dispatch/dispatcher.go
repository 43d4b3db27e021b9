// Package dispatch runs the single event loop that owns the Document, the
// Settings, the sync status and the sync coordinator. UI commands, worker
// completions and status timers all arrive through one ordered queue.
package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/samanthvittal/bookmark-browser/internal/domain"
	"github.com/samanthvittal/bookmark-browser/internal/logger"
	"github.com/samanthvittal/bookmark-browser/internal/remote"
	"github.com/samanthvittal/bookmark-browser/internal/syncer"
)

// Persister is the part of the persistence gateway the loop needs.
type Persister interface {
	ReadDocument(ctx context.Context) (domain.Document, error)
	SaveDocument(ctx context.Context, doc domain.Document) error
	ReadSettings(ctx context.Context) (domain.Settings, error)
	SaveSettings(ctx context.Context, settings domain.Settings) error
	SaveSyncState(ctx context.Context, state domain.SyncState) error
}

// Importer turns an external bookmarks file into folders.
type Importer func(ctx context.Context, path string) ([]domain.Folder, error)

// Options configures a Dispatcher.
type Options struct {
	Store        Persister
	Remote       remote.Gateway
	Hub          *Hub
	Importer     Importer
	Logger       logger.Logger
	SyncTimeout  time.Duration
	SuccessDwell time.Duration
	ErrorDwell   time.Duration
	QueueSize    int

	// SyncState is the version recorded by an earlier run, if any.
	SyncState domain.SyncState
}

// Snapshot is a consistent view of the loop's state.
type Snapshot struct {
	Document domain.Document       `json:"document"`
	Status   Status                `json:"status"`
	Settings domain.PublicSettings `json:"settings"`
	InFlight bool                  `json:"in_flight"`
	Synced   bool                  `json:"synced"`
	Version  string                `json:"version,omitempty"`
}

// ErrStopped is returned when the loop is no longer running.
var ErrStopped = errors.New("dispatcher stopped")

type syncDone struct{ res syncer.Result }

type statusExpired struct{ gen uint64 }

type snapshotQuery struct{ reply chan Snapshot }

// Dispatcher is the event loop. Create it with New and drive it with Run.
type Dispatcher struct {
	store    Persister
	hub      *Hub
	importer Importer
	logger   logger.Logger

	successDwell time.Duration
	errorDwell   time.Duration

	queue chan any
	done  chan struct{}

	// Owned by the loop goroutine.
	doc       domain.Document
	settings  domain.Settings
	status    Status
	statusGen uint64
	timer     *time.Timer
	sync      *syncer.Coordinator
	saved     domain.SyncState
}

// New creates a dispatcher seeded with the loaded Document and Settings.
func New(opts Options, doc domain.Document, settings domain.Settings) *Dispatcher {
	if opts.SuccessDwell <= 0 {
		opts.SuccessDwell = 5 * time.Second
	}
	if opts.ErrorDwell <= 0 {
		opts.ErrorDwell = 8 * time.Second
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	d := &Dispatcher{
		store:        opts.Store,
		hub:          opts.Hub,
		importer:     opts.Importer,
		logger:       opts.Logger,
		successDwell: opts.SuccessDwell,
		errorDwell:   opts.ErrorDwell,
		queue:        make(chan any, opts.QueueSize),
		done:         make(chan struct{}),
		doc:          doc,
		settings:     settings,
		status:       Status{Phase: PhaseIdle},
	}
	d.sync = syncer.New(opts.Remote, func(res syncer.Result) {
		d.post(syncDone{res: res})
	}, opts.SyncTimeout, opts.Logger)
	if opts.SyncState.Known() {
		d.sync.Restore(opts.SyncState.Location, remote.Token(opts.SyncState.Version))
		d.saved = opts.SyncState
	}
	return d
}

// Run consumes the queue until ctx is canceled. It must be called once.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer close(d.done)
	d.logger.Info("dispatcher started",
		logger.Int("folders", len(d.doc.Folders)),
		logger.Int("bookmarks", d.doc.BookmarkCount()))

	for {
		select {
		case <-ctx.Done():
			if d.timer != nil {
				d.timer.Stop()
			}
			d.logger.Info("dispatcher stopped")
			return nil
		case msg := <-d.queue:
			d.handle(ctx, msg)
		}
	}
}

// Submit enqueues a command. It blocks while the queue is full.
func (d *Dispatcher) Submit(ctx context.Context, cmd Command) error {
	if d.stopped() {
		return ErrStopped
	}
	select {
	case d.queue <- cmd:
		return nil
	case <-d.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot asks the loop for its current state.
func (d *Dispatcher) Snapshot(ctx context.Context) (Snapshot, error) {
	if d.stopped() {
		return Snapshot{}, ErrStopped
	}
	q := snapshotQuery{reply: make(chan Snapshot, 1)}
	select {
	case d.queue <- q:
	case <-d.done:
		return Snapshot{}, ErrStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case s := <-q.reply:
		return s, nil
	case <-d.done:
		return Snapshot{}, ErrStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (d *Dispatcher) stopped() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

// post is used by workers and timers; it gives up once the loop has exited.
func (d *Dispatcher) post(msg any) {
	select {
	case d.queue <- msg:
	case <-d.done:
	}
}

func (d *Dispatcher) handle(ctx context.Context, msg any) {
	switch m := msg.(type) {
	case ToggleFolder:
		d.mutate(ctx, "toggle_folder", m.Index, func(doc domain.Document) (domain.Document, bool) {
			return doc.ToggleFolder(m.Index)
		})
	case AddFolder:
		d.mutate(ctx, "add_folder", -1, func(doc domain.Document) (domain.Document, bool) {
			return doc.AddFolder(m.Name)
		})
	case AddBookmark:
		d.mutate(ctx, "add_bookmark", m.FolderIndex, func(doc domain.Document) (domain.Document, bool) {
			return doc.AddBookmark(m.FolderIndex, m.Name, m.URL)
		})
	case DeleteBookmark:
		d.mutate(ctx, "delete_bookmark", m.FolderIndex, func(doc domain.Document) (domain.Document, bool) {
			return doc.DeleteBookmark(m.FolderIndex, m.BookmarkIndex)
		})
	case DeleteFolder:
		d.mutate(ctx, "delete_folder", m.Index, func(doc domain.Document) (domain.Document, bool) {
			return doc.DeleteFolder(m.Index)
		})
	case ImportHomepage:
		d.importHomepage(ctx, m.Path)
	case ReloadLocal:
		d.reloadLocal(ctx)
	case ReloadSettings:
		d.reloadSettings(ctx)
	case Push:
		d.startSync(ctx, syncer.OpPush)
	case Pull:
		d.startSync(ctx, syncer.OpPull)
	case SaveSettings:
		d.reloadSettings(ctx)
		d.updateSettings(ctx, d.settings.WithRemote(m.Credential, m.Location))
	case ToggleSidebar:
		d.reloadSettings(ctx)
		s := d.settings
		s.SidebarCollapsed = !s.SidebarCollapsed
		d.updateSettings(ctx, s)
	case DismissStatus:
		if d.status.Terminal() {
			d.setStatus(Status{Phase: PhaseIdle})
		}
	case syncDone:
		d.finishSync(ctx, m.res)
	case statusExpired:
		if m.gen == d.statusGen && d.status.Terminal() {
			d.setStatus(Status{Phase: PhaseIdle})
		}
	case snapshotQuery:
		m.reply <- d.snapshot()
	default:
		d.logger.Warn("unknown dispatcher message")
	}
}

func (d *Dispatcher) snapshot() Snapshot {
	return Snapshot{
		Document: d.doc,
		Status:   d.status,
		Settings: d.settings.Public(),
		InFlight: d.sync.InFlight(),
		Synced:   d.sync.LastToken() != "",
		Version:  string(d.sync.LastToken()),
	}
}

// mutate applies a Document operation, then saves, notifies and autosyncs.
// No-ops stop after apply.
func (d *Dispatcher) mutate(ctx context.Context, name string, index int, apply func(domain.Document) (domain.Document, bool)) {
	doc, changed := apply(d.doc)
	if !changed {
		d.logger.Debug("command ignored", logger.String("command", name), logger.Int("index", index))
		return
	}
	d.replaceDocument(ctx, doc, true)
	d.autoSync(ctx)
}

func (d *Dispatcher) replaceDocument(ctx context.Context, doc domain.Document, persist bool) {
	d.doc = doc
	if persist {
		if err := d.store.SaveDocument(ctx, doc); err != nil {
			d.logger.Warn("failed to save bookmarks", logger.Error(err))
		}
	}
	d.hub.Notify(Notification{Type: NotifyDocument, Document: &doc})
}

func (d *Dispatcher) updateSettings(ctx context.Context, settings domain.Settings) {
	d.settings = settings
	if err := d.store.SaveSettings(ctx, settings); err != nil {
		d.logger.Warn("failed to save settings", logger.Error(err))
	}
	public := settings.Public()
	d.hub.Notify(Notification{Type: NotifySettings, Settings: &public})
}

// reloadSettings adopts settings written by another process, such as the
// settings command, so a later save does not put the old values back.
func (d *Dispatcher) reloadSettings(ctx context.Context) {
	settings, err := d.store.ReadSettings(ctx)
	if err != nil {
		d.logger.Debug("keeping settings, persisted copy unreadable", logger.Error(err))
		return
	}
	if settings == d.settings {
		return
	}
	d.logger.Info("settings changed on disk, reloading")
	d.settings = settings
	public := settings.Public()
	d.hub.Notify(Notification{Type: NotifySettings, Settings: &public})
}

func (d *Dispatcher) importHomepage(ctx context.Context, path string) {
	if d.importer == nil {
		d.logger.Warn("homepage import unavailable")
		return
	}
	folders, err := d.importer(ctx, path)
	if err != nil {
		d.logger.Warn("homepage import failed", logger.String("path", path), logger.Error(err))
		return
	}
	d.logger.Info("imported homepage bookmarks",
		logger.String("path", path),
		logger.Int("folders", len(folders)))
	d.mutate(ctx, "import_homepage", -1, func(doc domain.Document) (domain.Document, bool) {
		return doc.AppendFolders(folders...)
	})
}

// reloadLocal picks up edits made to the persisted Document by someone
// else. Our own saves read back identical and are ignored.
func (d *Dispatcher) reloadLocal(ctx context.Context) {
	doc, err := d.store.ReadDocument(ctx)
	if err != nil {
		d.logger.Debug("ignoring unreadable bookmarks file", logger.Error(err))
		return
	}
	if doc.Equal(d.doc) {
		return
	}
	d.logger.Info("bookmarks changed on disk, reloading")
	d.replaceDocument(ctx, doc, false)
	d.autoSync(ctx)
}

func (d *Dispatcher) autoSync(ctx context.Context) {
	if d.sync.AutoSync(ctx, d.doc, d.settings) {
		d.setStatus(Status{Phase: PhaseInProgress, Message: msgPushing})
	}
}

func (d *Dispatcher) startSync(ctx context.Context, op syncer.Op) {
	var err error
	msg := msgPushing
	if op == syncer.OpPull {
		msg = msgPulling
		err = d.sync.Pull(ctx, d.settings)
	} else {
		err = d.sync.Push(ctx, d.doc, d.settings)
	}

	switch {
	case errors.Is(err, syncer.ErrAlreadyInProgress):
		d.logger.Info("sync rejected, one is already running", logger.String("op", op.String()))
	case err != nil:
		d.setStatus(Status{Phase: PhaseError, Message: syncer.UserMessage(err)})
	default:
		d.setStatus(Status{Phase: PhaseInProgress, Message: msg})
	}
}

func (d *Dispatcher) finishSync(ctx context.Context, res syncer.Result) {
	if res.Err != nil {
		d.sync.Complete(res)
		d.saveSyncState(ctx)
		d.setStatus(Status{Phase: PhaseError, Message: syncer.UserMessage(res.Err)})
		return
	}

	msg := msgPushed
	if res.Op == syncer.OpPull {
		msg = msgPulled
		d.replaceDocument(ctx, res.Document, true)
	}
	d.sync.Complete(res)
	d.saveSyncState(ctx)
	d.setStatus(Status{Phase: PhaseSuccess, Message: msg})
}

// saveSyncState records the coordinator's token so the next run can write
// conditionally.
func (d *Dispatcher) saveSyncState(ctx context.Context) {
	location, token := d.sync.State()
	state := domain.SyncState{Location: location, Version: string(token)}
	if state == d.saved {
		return
	}
	if err := d.store.SaveSyncState(ctx, state); err != nil {
		d.logger.Warn("failed to save sync state", logger.Error(err))
		return
	}
	d.saved = state
}

// setStatus replaces the indicator and arms the dwell timer for terminal
// phases. Bumping statusGen invalidates any timer already in the queue.
func (d *Dispatcher) setStatus(s Status) {
	d.status = s
	d.statusGen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	var dwell time.Duration
	switch s.Phase {
	case PhaseSuccess:
		dwell = d.successDwell
	case PhaseError:
		dwell = d.errorDwell
	}
	if dwell > 0 {
		gen := d.statusGen
		d.timer = time.AfterFunc(dwell, func() { d.post(statusExpired{gen: gen}) })
	}

	d.hub.Notify(Notification{Type: NotifyStatus, Status: &s})
}

package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/samanthvittal/bookmark-browser/internal/config"
	"github.com/samanthvittal/bookmark-browser/internal/dispatch"
	"github.com/samanthvittal/bookmark-browser/internal/httpserver"
	"github.com/samanthvittal/bookmark-browser/internal/httpserver/deps"
	"github.com/samanthvittal/bookmark-browser/internal/logger"
	"github.com/samanthvittal/bookmark-browser/internal/redis"
	"github.com/samanthvittal/bookmark-browser/internal/remote"
	"github.com/samanthvittal/bookmark-browser/internal/sources/homepage"
	"github.com/samanthvittal/bookmark-browser/internal/store"
	"github.com/samanthvittal/bookmark-browser/internal/store/file"
	redisstore "github.com/samanthvittal/bookmark-browser/internal/store/redis"
	"github.com/samanthvittal/bookmark-browser/internal/version"
	"github.com/samanthvittal/bookmark-browser/internal/watch"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	store       *store.Gateway
	redisClient *goredis.Client
	remote      remote.Gateway
}

// New connects the persistence backend and builds the remote client.
// The event loop is created per run by Serve or Sync.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: loggerClient}

	switch cfg.Backend {
	case config.BackendRedis:
		client, err := redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		backend := redisstore.NewBackend(client)
		if ts, err := backend.UpdatedAt(ctx, store.DocumentKey); err == nil && !ts.IsZero() {
			loggerClient.Info("bookmarks found in redis", logger.String("updated_at", ts.Format(time.RFC3339)))
		}
		a.redisClient = client
		a.store = store.NewGateway(backend, loggerClient)
	default:
		a.store = store.NewGateway(file.New(cfg.ConfigDir), loggerClient)
		loggerClient.Info("using file backend", logger.String("dir", cfg.ConfigDir))
	}

	a.remote = remote.NewGitHub(remote.GitHubOptions{
		BaseURL:   cfg.RemoteAPIURL,
		Filename:  cfg.RemoteFilename,
		Branch:    cfg.RemoteBranch,
		UserAgent: "bookmarks/" + version.Version,
		Logger:    loggerClient,
	})

	return a, nil
}

// loop is one running dispatcher.
type loop struct {
	d       *dispatch.Dispatcher
	hub     *dispatch.Hub
	cancel  context.CancelFunc
	stopped chan struct{}
}

func (a *App) startLoop(ctx context.Context) *loop {
	doc := a.store.LoadDocument(ctx)
	// Materializes the default document on first run.
	if err := a.store.SaveDocument(ctx, doc); err != nil {
		a.logger.Warn("failed to save bookmarks on startup", logger.Error(err))
	}
	settings := a.store.LoadSettings(ctx)

	hub := dispatch.NewHub(64, a.logger)
	d := dispatch.New(dispatch.Options{
		Store:        a.store,
		Remote:       a.remote,
		Hub:          hub,
		Importer:     homepage.Import,
		Logger:       a.logger,
		SyncTimeout:  a.cfg.SyncTimeout,
		SuccessDwell: a.cfg.SuccessDwell,
		ErrorDwell:   a.cfg.ErrorDwell,
		SyncState:    a.store.LoadSyncState(ctx),
	}, doc, settings)

	loopCtx, cancel := context.WithCancel(ctx)
	l := &loop{d: d, hub: hub, cancel: cancel, stopped: make(chan struct{})}
	go func() {
		defer close(l.stopped)
		_ = d.Run(loopCtx)
	}()
	return l
}

func (l *loop) stop() {
	l.hub.Close()
	l.cancel()
	<-l.stopped
}

// Serve runs the event loop, the file watcher and the HTTP boundary until
// ctx is canceled.
func (a *App) Serve(ctx context.Context) error {
	a.logger.Info("🚀 Starting bookmarks", logger.String("addr", a.cfg.ListenAddr))
	a.logger.Info(version.String())

	l := a.startLoop(ctx)
	defer l.stop()

	if a.cfg.Watch && a.cfg.Backend == config.BackendFile {
		watched := []struct {
			path string
			cmd  dispatch.Command
		}{
			{a.cfg.DocumentPath(), dispatch.ReloadLocal{}},
			{a.cfg.SettingsPath(), dispatch.ReloadSettings{}},
		}
		for _, f := range watched {
			w := watch.New(f.path, func() {
				if err := l.d.Submit(ctx, f.cmd); err != nil {
					a.logger.Debug("reload not submitted", logger.Error(err))
				}
			}, watch.DefaultDebounce, a.logger)
			go func() {
				if err := w.Run(ctx); err != nil {
					a.logger.Warn("file watcher stopped", logger.Error(err))
				}
			}()
		}
	}

	server := httpserver.New(a.cfg, a.logger, deps.Deps{
		Logger:         a.logger,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedHosts:   a.cfg.AllowedHosts,
		RequestTimeout: a.cfg.RequestTimeout,
		Dispatcher:     l.d,
		Hub:            l.hub,
		Backend:        a.cfg.Backend,
		RedisClient:    a.redisClient,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	return nil
}

// Sync runs a one-shot loop, issues cmd (dispatch.Push or dispatch.Pull) and
// waits for the terminal status.
func (a *App) Sync(ctx context.Context, cmd dispatch.Command) (dispatch.Status, error) {
	l := a.startLoop(ctx)
	defer l.stop()

	events, unsubscribe := l.hub.Subscribe()
	defer unsubscribe()

	if err := l.d.Submit(ctx, cmd); err != nil {
		return dispatch.Status{}, err
	}
	for {
		select {
		case <-ctx.Done():
			return dispatch.Status{}, ctx.Err()
		case n, ok := <-events:
			if !ok {
				return dispatch.Status{}, dispatch.ErrStopped
			}
			if n.Type == dispatch.NotifyStatus && n.Status.Terminal() {
				return *n.Status, nil
			}
		}
	}
}

// SaveSettings stores the remote credential and location, keeping the rest
// of the persisted settings.
func (a *App) SaveSettings(ctx context.Context, credential, location string) error {
	settings := a.store.LoadSettings(ctx).WithRemote(credential, location)
	return a.store.SaveSettings(ctx, settings)
}

// Close releases the redis connection, if any.
func (a *App) Close() {
	if a.redisClient == nil {
		return
	}
	if err := a.redisClient.Close(); err != nil {
		a.logger.Warn("failed to close redis", logger.Error(err))
		return
	}
	a.logger.Info("✅ Redis closed cleanly")
}

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

type Config struct {
	ListenAddr      string        // ex: "127.0.0.1:7878"
	AllowedHosts    []string      // Host headers accepted by the UI API
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout for the JSON API

	LogLevel      string // "debug" | "info" | "warn" | "error"
	PrettyLog     bool   // true => zap dev (color), false => zap prod (JSON)
	LogFile       string // optional rotated log file
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	ConfigDir string // directory holding bookmarks.json and settings.json
	Backend   string // "file" | "redis"
	Watch     bool   // watch bookmarks.json for external edits (file backend only)

	RemoteAPIURL   string        // base URL of the contents API
	RemoteFilename string        // fixed file name inside the remote repository
	RemoteBranch   string        // optional branch, empty = repository default
	SyncTimeout    time.Duration // bound on a single push/pull
	SuccessDwell   time.Duration // how long a success status stays visible
	ErrorDwell     time.Duration // how long an error status stays visible

	// Redis (only when Backend == "redis")
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts
}

func Load() *Config {
	listen := getenv("BOOKMARKS_LISTEN_ADDR", "127.0.0.1:7878")

	cfg := &Config{
		// Server settings
		ListenAddr:      listen,
		AllowedHosts:    splitAndTrim(getenv("BOOKMARKS_ALLOWED_HOSTS", defaultAllowedHosts(listen))),
		ShutdownTimeout: mustDuration("BOOKMARKS_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("BOOKMARKS_REQUEST_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:      getenv("BOOKMARKS_LOG_LEVEL", "info"),
		PrettyLog:     mustBool("BOOKMARKS_PRETTY_LOG", true),
		LogFile:       getenv("BOOKMARKS_LOG_FILE", ""),
		LogMaxSizeMB:  getenvInt("BOOKMARKS_LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getenvInt("BOOKMARKS_LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getenvInt("BOOKMARKS_LOG_MAX_AGE_DAYS", 28),

		// Local persistence
		ConfigDir: getenv("BOOKMARKS_CONFIG_DIR", defaultConfigDir()),
		Backend:   strings.ToLower(getenv("BOOKMARKS_BACKEND", BackendFile)),
		Watch:     mustBool("BOOKMARKS_WATCH", true),

		// Remote sync
		RemoteAPIURL:   getenv("BOOKMARKS_REMOTE_API_URL", "https://api.github.com"),
		RemoteFilename: getenv("BOOKMARKS_REMOTE_FILENAME", "bookmarks.json"),
		RemoteBranch:   getenv("BOOKMARKS_REMOTE_BRANCH", ""),
		SyncTimeout:    mustDuration("BOOKMARKS_SYNC_TIMEOUT", 15*time.Second),
		SuccessDwell:   mustDuration("BOOKMARKS_SUCCESS_DWELL", 5*time.Second),
		ErrorDwell:     mustDuration("BOOKMARKS_ERROR_DWELL", 8*time.Second),

		// Redis settings
		RedisAddr:           getenv("BOOKMARKS_REDIS_ADDR", "localhost:6379"),
		RedisUser:           getenv("BOOKMARKS_REDIS_USERNAME", ""),
		RedisPassword:       getenv("BOOKMARKS_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("BOOKMARKS_REDIS_DB", 0),
		RedisDT:             mustDuration("BOOKMARKS_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("BOOKMARKS_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("BOOKMARKS_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("BOOKMARKS_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("BOOKMARKS_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("BOOKMARKS_REDIS_POOL_SIZE", 4),
		RedisConnectTimeout: mustDuration("BOOKMARKS_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("BOOKMARKS_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("BOOKMARKS_REDIS_WARN_THRESHOLD", 3),
	}

	if cfg.Backend != BackendFile && cfg.Backend != BackendRedis {
		panic(fmt.Sprintf("❌ FATAL: BOOKMARKS_BACKEND must be %q or %q, got %q", BackendFile, BackendRedis, cfg.Backend))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// DocumentPath is where the file backend keeps the bookmark tree.
func (c *Config) DocumentPath() string {
	return filepath.Join(c.ConfigDir, "bookmarks.json")
}

// SettingsPath is where the file backend keeps the local settings.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.ConfigDir, "settings.json")
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// defaultConfigDir mirrors the desktop convention: <user config dir>/bookmarks-browser,
// falling back to $HOME/.config when the platform has no config dir.
func defaultConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "bookmarks-browser")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "bookmarks-browser")
}

// defaultAllowedHosts accepts the listen address itself plus its localhost alias.
// Example: "127.0.0.1:7878" -> "127.0.0.1:7878,localhost:7878"
func defaultAllowedHosts(listen string) string {
	idx := strings.LastIndex(listen, ":")
	if idx == -1 {
		return listen
	}
	port := listen[idx+1:]
	host := listen[:idx]
	if host == "" || host == "0.0.0.0" {
		return "127.0.0.1:" + port + ",localhost:" + port
	}
	if host == "localhost" {
		return listen + ",127.0.0.1:" + port
	}
	return listen + ",localhost:" + port
}

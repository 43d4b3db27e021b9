package redis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/samanthvittal/bookmark-browser/internal/logger"
	"github.com/samanthvittal/bookmark-browser/internal/store"
)

func newTestBackend(t *testing.T) (*Backend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewBackend(client), mr
}

func TestBackendReadMissing(t *testing.T) {
	b, _ := newTestBackend(t)

	_, err := b.Read(context.Background(), "bookmarks.json")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Read() error = %v, want store.ErrNotFound", err)
	}
}

func TestBackendWriteRead(t *testing.T) {
	b, mr := newTestBackend(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return fixed }
	ctx := context.Background()

	if err := b.Write(ctx, "settings.json", []byte(`{"sidebar_collapsed":true}`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := b.Read(ctx, "settings.json")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != `{"sidebar_collapsed":true}` {
		t.Errorf("Read() = %s", got)
	}

	raw, err := mr.Get(Key("settings.json"))
	if err != nil {
		t.Fatalf("key not stored under prefix: %v", err)
	}
	if raw != `{"sidebar_collapsed":true}` {
		t.Errorf("stored value = %s", raw)
	}
	if ttl := mr.TTL(Key("settings.json")); ttl != 0 {
		t.Errorf("expected no TTL, got %v", ttl)
	}

	ts, err := b.UpdatedAt(ctx, "settings.json")
	if err != nil {
		t.Fatalf("UpdatedAt() error = %v", err)
	}
	if !ts.Equal(fixed) {
		t.Errorf("UpdatedAt() = %v, want %v", ts, fixed)
	}
}

func TestBackendUpdatedAtNeverWritten(t *testing.T) {
	b, _ := newTestBackend(t)

	ts, err := b.UpdatedAt(context.Background(), "bookmarks.json")
	if err != nil {
		t.Fatalf("UpdatedAt() error = %v", err)
	}
	if !ts.IsZero() {
		t.Errorf("UpdatedAt() = %v, want zero", ts)
	}
}

func TestGatewayOverRedis(t *testing.T) {
	b, mr := newTestBackend(t)
	ctx := context.Background()

	mr.Set(Key(store.SettingsKey), `{"remote_location":"me/bookmarks","gist_id":"old"}`)

	gw := store.NewGateway(b, logger.NewNop())
	settings := gw.LoadSettings(ctx)
	if settings.RemoteLocation != "me/bookmarks" {
		t.Fatalf("LoadSettings() = %+v", settings)
	}
	if err := gw.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	raw, _ := mr.Get(Key(store.SettingsKey))
	if strings.Contains(raw, "gist_id") {
		t.Errorf("legacy field survived save: %s", raw)
	}
}

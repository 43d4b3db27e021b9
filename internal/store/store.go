// Package store is the persistence gateway: it loads and saves the bookmark
// Document and the local Settings through an opaque key-value Backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samanthvittal/bookmark-browser/internal/domain"
	"github.com/samanthvittal/bookmark-browser/internal/logger"
)

const (
	// DocumentKey holds the synchronized bookmark tree.
	DocumentKey = "bookmarks.json"
	// SettingsKey holds local-only preferences.
	SettingsKey = "settings.json"
	// SyncStateKey holds the remote version seen by the last successful sync.
	SyncStateKey = "sync.json"
)

// ErrNotFound is returned by a Backend when the key has never been written.
var ErrNotFound = errors.New("store: key not found")

// Backend is a durable key-value store. Write must leave either the old or the
// new complete value behind if the process dies mid-write.
type Backend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}

// Gateway encodes domain values as indented JSON on top of a Backend.
type Gateway struct {
	backend Backend
	logger  logger.Logger
}

// NewGateway creates a persistence gateway
func NewGateway(backend Backend, log logger.Logger) *Gateway {
	return &Gateway{
		backend: backend,
		logger:  log,
	}
}

// ReadDocument loads the document and reports any failure.
func (g *Gateway) ReadDocument(ctx context.Context) (domain.Document, error) {
	data, err := g.backend.Read(ctx, DocumentKey)
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to read bookmarks: %w", err)
	}
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("failed to parse bookmarks: %w", err)
	}
	return doc, nil
}

// LoadDocument never fails: a missing or corrupt document yields the default tree.
func (g *Gateway) LoadDocument(ctx context.Context) domain.Document {
	doc, err := g.ReadDocument(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			g.logger.Warn("bookmarks unreadable, using defaults", logger.Error(err))
		} else {
			g.logger.Info("no saved bookmarks, using defaults")
		}
		return domain.DefaultDocument()
	}
	return doc
}

// SaveDocument persists the document.
func (g *Gateway) SaveDocument(ctx context.Context, doc domain.Document) error {
	return g.write(ctx, DocumentKey, doc)
}

// ReadSettings loads the settings and reports any failure. Unknown fields,
// including the legacy gist_id, are ignored.
func (g *Gateway) ReadSettings(ctx context.Context) (domain.Settings, error) {
	data, err := g.backend.Read(ctx, SettingsKey)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	settings := domain.DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	return settings, nil
}

// LoadSettings never fails: a missing or corrupt file yields the default settings.
func (g *Gateway) LoadSettings(ctx context.Context) domain.Settings {
	settings, err := g.ReadSettings(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			g.logger.Warn("settings unreadable, using defaults", logger.Error(err))
		}
		return domain.DefaultSettings()
	}
	return settings
}

// SaveSettings persists only the current settings schema.
func (g *Gateway) SaveSettings(ctx context.Context, settings domain.Settings) error {
	return g.write(ctx, SettingsKey, settings)
}

// LoadSyncState never fails: a missing or corrupt file yields an empty state.
func (g *Gateway) LoadSyncState(ctx context.Context) domain.SyncState {
	data, err := g.backend.Read(ctx, SyncStateKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			g.logger.Warn("sync state unreadable, ignoring it", logger.Error(err))
		}
		return domain.SyncState{}
	}
	var state domain.SyncState
	if err := json.Unmarshal(data, &state); err != nil {
		g.logger.Warn("sync state corrupt, ignoring it", logger.Error(err))
		return domain.SyncState{}
	}
	return state
}

// SaveSyncState persists the last observed remote version.
func (g *Gateway) SaveSyncState(ctx context.Context, state domain.SyncState) error {
	return g.write(ctx, SyncStateKey, state)
}

func (g *Gateway) write(ctx context.Context, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := g.backend.Write(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

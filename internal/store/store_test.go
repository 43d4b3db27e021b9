package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samanthvittal/bookmark-browser/internal/domain"
	"github.com/samanthvittal/bookmark-browser/internal/logger"
	"github.com/samanthvittal/bookmark-browser/internal/store"
	"github.com/samanthvittal/bookmark-browser/internal/store/file"
)

func newGateway(t *testing.T) (*store.Gateway, string) {
	t.Helper()
	dir := t.TempDir()
	return store.NewGateway(file.New(dir), logger.NewNop()), dir
}

func TestDocumentRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		doc  domain.Document
	}{
		{"default", domain.DefaultDocument()},
		{"no folders", domain.Document{Folders: []domain.Folder{}}},
		{"empty folder", domain.Document{Folders: []domain.Folder{{Name: "Empty", Expanded: false}}}},
		{
			"collapsed folder with bookmarks",
			domain.Document{Folders: []domain.Folder{{
				Name:     "Work",
				Expanded: false,
				Bookmarks: []domain.Bookmark{
					{Name: "a", URL: "https://a.example"},
					{Name: "b", URL: "https://b.example"},
				},
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, _ := newGateway(t)
			ctx := context.Background()

			if err := gw.SaveDocument(ctx, tt.doc); err != nil {
				t.Fatalf("SaveDocument() error = %v", err)
			}
			got, err := gw.ReadDocument(ctx)
			if err != nil {
				t.Fatalf("ReadDocument() error = %v", err)
			}
			if !got.Equal(tt.doc) {
				t.Errorf("round trip = %+v, want %+v", got, tt.doc)
			}
		})
	}
}

func TestLoadDocumentFallsBackToDefault(t *testing.T) {
	tests := []struct {
		name    string
		content string
		write   bool
	}{
		{"missing", "", false},
		{"corrupt", "{not json", true},
		{"wrong shape", `{"folders": 12}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, dir := newGateway(t)
			if tt.write {
				if err := os.WriteFile(filepath.Join(dir, store.DocumentKey), []byte(tt.content), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			got := gw.LoadDocument(context.Background())
			if !got.Equal(domain.DefaultDocument()) {
				t.Errorf("LoadDocument() = %+v, want default", got)
			}
		})
	}
}

func TestReadDocumentReportsErrors(t *testing.T) {
	gw, dir := newGateway(t)
	ctx := context.Background()

	if _, err := gw.ReadDocument(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("ReadDocument() on empty dir error = %v, want ErrNotFound", err)
	}

	if err := os.WriteFile(filepath.Join(dir, store.DocumentKey), []byte("[]x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := gw.ReadDocument(ctx); err == nil {
		t.Error("ReadDocument() should fail on corrupt content")
	}
}

func TestLegacyDocumentWithoutExpanded(t *testing.T) {
	gw, dir := newGateway(t)
	legacy := `{"folders":[{"name":"Old","bookmarks":[{"name":"x","url":"https://x.example"}]}]}`
	if err := os.WriteFile(filepath.Join(dir, store.DocumentKey), []byte(legacy), 0o600); err != nil {
		t.Fatal(err)
	}

	got := gw.LoadDocument(context.Background())
	if len(got.Folders) != 1 || !got.Folders[0].Expanded {
		t.Errorf("LoadDocument() = %+v, want one expanded folder", got)
	}
}

func TestSaveDocumentIsIndented(t *testing.T) {
	gw, dir := newGateway(t)
	if err := gw.SaveDocument(context.Background(), domain.DefaultDocument()); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, store.DocumentKey))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "\n  \"folders\"") {
		t.Errorf("expected two-space indented JSON, got:\n%s", raw)
	}
}

func TestSettings(t *testing.T) {
	t.Run("missing yields defaults", func(t *testing.T) {
		gw, _ := newGateway(t)
		if got := gw.LoadSettings(context.Background()); got != domain.DefaultSettings() {
			t.Errorf("LoadSettings() = %+v", got)
		}
	})

	t.Run("corrupt yields defaults", func(t *testing.T) {
		gw, dir := newGateway(t)
		if err := os.WriteFile(filepath.Join(dir, store.SettingsKey), []byte("nope"), 0o600); err != nil {
			t.Fatal(err)
		}
		if got := gw.LoadSettings(context.Background()); got != domain.DefaultSettings() {
			t.Errorf("LoadSettings() = %+v", got)
		}
		if _, err := gw.ReadSettings(context.Background()); err == nil {
			t.Error("ReadSettings() should fail on corrupt content")
		}
	})

	t.Run("round trip", func(t *testing.T) {
		gw, _ := newGateway(t)
		ctx := context.Background()
		want := domain.Settings{SidebarCollapsed: true, RemoteCredential: "tok", RemoteLocation: "me/marks"}
		if err := gw.SaveSettings(ctx, want); err != nil {
			t.Fatal(err)
		}
		if got := gw.LoadSettings(ctx); got != want {
			t.Errorf("LoadSettings() = %+v, want %+v", got, want)
		}
	})

	t.Run("legacy gist_id is dropped on save", func(t *testing.T) {
		gw, dir := newGateway(t)
		ctx := context.Background()
		path := filepath.Join(dir, store.SettingsKey)
		legacy := `{"sidebar_collapsed":true,"remote_credential":"tok","gist_id":"abc123"}`
		if err := os.WriteFile(path, []byte(legacy), 0o600); err != nil {
			t.Fatal(err)
		}

		got := gw.LoadSettings(ctx)
		if !got.SidebarCollapsed || got.RemoteCredential != "tok" || got.RemoteLocation != "" {
			t.Fatalf("LoadSettings() = %+v", got)
		}
		if err := gw.SaveSettings(ctx, got); err != nil {
			t.Fatal(err)
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(string(raw), "gist_id") {
			t.Errorf("legacy field written back: %s", raw)
		}
	})
}

type failingBackend struct{}

func (failingBackend) Read(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (failingBackend) Write(context.Context, string, []byte) error {
	return errors.New("disk on fire")
}

func TestGatewayBackendFailures(t *testing.T) {
	gw := store.NewGateway(failingBackend{}, logger.NewNop())
	ctx := context.Background()

	if got := gw.LoadDocument(ctx); !got.Equal(domain.DefaultDocument()) {
		t.Errorf("LoadDocument() = %+v, want default", got)
	}
	if got := gw.LoadSettings(ctx); got != domain.DefaultSettings() {
		t.Errorf("LoadSettings() = %+v, want default", got)
	}
	if err := gw.SaveDocument(ctx, domain.DefaultDocument()); err == nil {
		t.Error("SaveDocument() should surface backend failure")
	}
	if err := gw.SaveSettings(ctx, domain.DefaultSettings()); err == nil {
		t.Error("SaveSettings() should surface backend failure")
	}
}

func TestSyncStateRoundTrip(t *testing.T) {
	gw, dir := newGateway(t)
	ctx := context.Background()

	if got := gw.LoadSyncState(ctx); got.Known() {
		t.Errorf("LoadSyncState() on empty dir = %+v", got)
	}

	want := domain.SyncState{Location: "me/bookmarks", Version: "abc123"}
	if err := gw.SaveSyncState(ctx, want); err != nil {
		t.Fatalf("SaveSyncState() error = %v", err)
	}
	if got := gw.LoadSyncState(ctx); got != want {
		t.Errorf("LoadSyncState() = %+v, want %+v", got, want)
	}

	if err := os.WriteFile(filepath.Join(dir, store.SyncStateKey), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := gw.LoadSyncState(ctx); got != (domain.SyncState{}) {
		t.Errorf("LoadSyncState() on corrupt file = %+v, want empty", got)
	}
}

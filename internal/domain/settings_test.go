package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSettingsLegacyFieldDropped(t *testing.T) {
	legacy := `{"sidebar_collapsed":true,"remote_credential":"tok","remote_location":"me/bookmarks","gist_id":"abc123"}`

	var s Settings
	if err := json.Unmarshal([]byte(legacy), &s); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	want := Settings{SidebarCollapsed: true, RemoteCredential: "tok", RemoteLocation: "me/bookmarks"}
	if s != want {
		t.Errorf("got %+v, want %+v", s, want)
	}

	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(out), "gist_id") {
		t.Errorf("legacy field re-emitted: %s", out)
	}
}

func TestSettingsWithRemote(t *testing.T) {
	s := DefaultSettings().WithRemote("  tok \n", " me/repo ")

	if s.RemoteCredential != "tok" || s.RemoteLocation != "me/repo" {
		t.Errorf("fields not trimmed: %+v", s)
	}
	if !s.HasCredential() || !s.HasLocation() {
		t.Error("expected credential and location to be set")
	}
}

func TestSettingsPublicHidesCredential(t *testing.T) {
	s := Settings{RemoteCredential: "secret", RemoteLocation: "me/repo"}

	data, err := json.Marshal(s.Public())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Errorf("credential leaked: %s", data)
	}
	if !s.Public().HasCredential {
		t.Error("HasCredential should be true")
	}
}

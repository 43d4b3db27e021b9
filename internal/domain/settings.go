package domain

import "strings"

// Settings are local-only preferences. They are never pushed to the remote.
//
// Older releases stored a "gist_id" field for a previous remote scheme.
// It is accepted on load (encoding/json skips unknown fields) and, since
// the struct has no such field, never written back.
type Settings struct {
	SidebarCollapsed bool   `json:"sidebar_collapsed"`
	RemoteCredential string `json:"remote_credential"`
	RemoteLocation   string `json:"remote_location"`
}

// DefaultSettings returns the zero configuration: sidebar open, no remote.
func DefaultSettings() Settings {
	return Settings{}
}

// WithRemote returns a copy with trimmed credential and location.
func (s Settings) WithRemote(credential, location string) Settings {
	s.RemoteCredential = strings.TrimSpace(credential)
	s.RemoteLocation = strings.TrimSpace(location)
	return s
}

// HasCredential reports whether a credential is configured.
func (s Settings) HasCredential() bool {
	return s.RemoteCredential != ""
}

// HasLocation reports whether a remote location is configured.
func (s Settings) HasLocation() bool {
	return s.RemoteLocation != ""
}

// PublicSettings is the view of Settings safe to hand to the presentation layer.
type PublicSettings struct {
	SidebarCollapsed bool   `json:"sidebar_collapsed"`
	HasCredential    bool   `json:"has_credential"`
	RemoteLocation   string `json:"remote_location"`
}

// Public drops the credential.
func (s Settings) Public() PublicSettings {
	return PublicSettings{
		SidebarCollapsed: s.SidebarCollapsed,
		HasCredential:    s.HasCredential(),
		RemoteLocation:   s.RemoteLocation,
	}
}

package domain

// SyncState is the remote version observed by the last successful sync and
// the location it was observed at. It is local-only, like Settings.
type SyncState struct {
	Location string `json:"location"`
	Version  string `json:"version"`
}

// Known reports whether a version has been recorded.
func (s SyncState) Known() bool {
	return s.Location != "" && s.Version != ""
}

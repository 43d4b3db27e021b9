package dispatch

// Phase is the state of the sync status indicator.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseInProgress Phase = "in_progress"
	PhaseSuccess    Phase = "success"
	PhaseError      Phase = "error"
)

// Status is what the indicator shows.
type Status struct {
	Phase   Phase  `json:"phase"`
	Message string `json:"message,omitempty"`
}

// Terminal reports whether the status ends a sync and will expire on its own.
func (s Status) Terminal() bool {
	return s.Phase == PhaseSuccess || s.Phase == PhaseError
}

const (
	msgPushing = "Pushing…"
	msgPulling = "Pulling…"
	msgPushed  = "Bookmarks pushed."
	msgPulled  = "Bookmarks pulled."
)

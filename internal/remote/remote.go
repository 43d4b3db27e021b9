// Package remote is the versioned remote gateway: get and put of the bookmark
// Document against a single remote slot, with an opaque version token used
// for optimistic concurrency.
package remote

import (
	"context"

	"github.com/samanthvittal/bookmark-browser/internal/domain"
)

// Token is the opaque version of the remote Document at last observation.
// The empty Token means the object has never been observed.
type Token string

// Gateway talks to a versioned blob store.
type Gateway interface {
	// Fetch returns the remote Document together with its current version.
	Fetch(ctx context.Context, credential, location string) (domain.Document, Token, error)

	// ProbeVersion returns the current version, or "" when the object does not exist yet.
	ProbeVersion(ctx context.Context, credential, location string) (Token, error)

	// Store writes doc if the remote version still equals expected and returns
	// the new version. An empty expected Token makes Store probe first.
	Store(ctx context.Context, credential, location string, doc domain.Document, expected Token) (Token, error)
}

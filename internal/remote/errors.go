package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies remote failures.
type Kind int

const (
	KindOther Kind = iota
	KindUnauthorized
	KindNotFound
	KindConflict
	KindValidation
	KindTimeout
	KindUnreachable
	KindMalformedContent
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindTimeout:
		return "timeout"
	case KindUnreachable:
		return "unreachable"
	case KindMalformedContent:
		return "malformed_content"
	default:
		return "other"
	}
}

// Error is returned by every Gateway operation that fails.
type Error struct {
	Kind   Kind
	Op     string // fetch, probe or store
	Status int    // HTTP status, 0 when no response was received
	Err    error
}

func (e *Error) Error() string {
	msg := "remote " + e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (http %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so callers can write
// errors.Is(err, remote.ErrConflict).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrUnauthorized     = &Error{Kind: KindUnauthorized}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrValidation       = &Error{Kind: KindValidation}
	ErrTimeout          = &Error{Kind: KindTimeout}
	ErrUnreachable      = &Error{Kind: KindUnreachable}
	ErrMalformedContent = &Error{Kind: KindMalformedContent}
)

// KindOf returns the Kind carried by err, or KindOther.
func KindOf(err error) Kind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return KindOther
}

// UserMessage turns err into a short message fit for the status indicator.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindUnauthorized:
		return "The access token was rejected. Check your credential."
	case KindNotFound:
		return "Remote repository not found. Check the location."
	case KindConflict:
		return "The remote has newer changes. Pull before pushing again."
	case KindValidation:
		return "The remote location is invalid. Use owner/repo."
	case KindTimeout:
		return "The remote took too long to respond."
	case KindUnreachable:
		return "Could not reach the remote. Check your connection."
	case KindMalformedContent:
		return "The remote bookmarks could not be read."
	default:
		return "Sync failed."
	}
}

func newError(kind Kind, op string, status int, err error) *Error {
	return &Error{Kind: kind, Op: op, Status: status, Err: err}
}

// transportError classifies a failure that happened before any response arrived.
func transportError(op string, err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return newError(KindTimeout, op, 0, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return newError(KindTimeout, op, 0, err)
	case isUnreachable(err):
		return newError(KindUnreachable, op, 0, err)
	default:
		return newError(KindOther, op, 0, err)
	}
}

func isUnreachable(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

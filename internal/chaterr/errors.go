// Package chaterr holds the error taxonomy shared by the chat client
// components. Every user-initiated operation fails with one of these so the
// caller can render a single status line via Message.
package chaterr

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionInvalid means the backend rejected the stored session token.
	// Callers treat it as a silent local sign-out.
	ErrSessionInvalid = errors.New("session is no longer valid")
	ErrSendInProgress = errors.New("a message is already being sent")
	ErrNotSignedIn    = errors.New("sign in required")
)

// IdentityError is an interactive provider failure or cancellation.
type IdentityError struct {
	Cause error
}

func (e *IdentityError) Error() string {
	if e.Cause == nil {
		return "Google sign-in failed"
	}
	return e.Cause.Error()
}

func (e *IdentityError) Unwrap() error { return e.Cause }

// VerificationError is a backend rejection. Detail is the backend's own
// message and is shown verbatim.
type VerificationError struct {
	Status int
	Detail string
}

func (e *VerificationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("request rejected with status %d", e.Status)
	}
	return e.Detail
}

// ValidationError is a local precondition failure. It never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// TransportError wraps feed and send failures below the HTTP layer.
type TransportError struct {
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	if e.Cause == nil {
		return e.Op + " failed"
	}
	return e.Op + ": " + e.Cause.Error()
}

func (e *TransportError) Unwrap() error { return e.Cause }

// Message renders err as one human readable status line, using fallback when
// the error carries nothing better.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var verr *VerificationError
	if errors.As(err, &verr) {
		if verr.Detail != "" {
			return verr.Detail
		}
		return fallback
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}

	var idErr *IdentityError
	if errors.As(err, &idErr) {
		return idErr.Error()
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// Package auth abstracts the account/session provider: who is signed in,
// passwordless sign-in, sign-out, and a stream of session transitions that
// the sync layer subscribes to.
package auth

import "context"

// Account is an authenticated identity.
type Account struct {
	ID    string
	Email string
}

// EventKind distinguishes session transitions.
type EventKind string

const (
	SignedIn  EventKind = "signed_in"
	SignedOut EventKind = "signed_out"
)

// Event is one session transition. Account is set for SignedIn events.
type Event struct {
	Kind    EventKind
	Account *Account
}

// Provider is the account/session port.
type Provider interface {
	// Current returns the authenticated account, or nil when signed out.
	Current(ctx context.Context) (*Account, error)

	// BeginMagicLink starts passwordless sign-in for the email address.
	// The link in the email redirects to redirectTo.
	BeginMagicLink(ctx context.Context, email, redirectTo string) error

	// SignOut ends the current session.
	SignOut(ctx context.Context) error

	// Events returns the stream of sign-in/sign-out transitions.
	Events() <-chan Event
}

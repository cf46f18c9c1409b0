// Package static provides an in-memory auth provider for tests and for the
// no-cloud deployment where no real identity service is configured.
package static

import (
	"context"
	"sync"

	"carfund/internal/auth"
)

type Provider struct {
	mu      sync.Mutex
	account *auth.Account
	events  chan auth.Event
}

// New returns a signed-out provider.
func New() *Provider {
	return &Provider{events: make(chan auth.Event, 8)}
}

// NewSignedIn returns a provider with a fixed signed-in account.
func NewSignedIn(account auth.Account) *Provider {
	p := New()
	p.account = &account
	return p
}

func (p *Provider) Current(context.Context) (*auth.Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.account, nil
}

// BeginMagicLink signs the address straight in; there is no email loop here.
func (p *Provider) BeginMagicLink(_ context.Context, email, _ string) error {
	p.SignIn(auth.Account{ID: email, Email: email})
	return nil
}

func (p *Provider) SignOut(context.Context) error {
	p.mu.Lock()
	p.account = nil
	p.mu.Unlock()
	p.emit(auth.Event{Kind: auth.SignedOut})
	return nil
}

func (p *Provider) Events() <-chan auth.Event {
	return p.events
}

// SignIn installs the account and emits a signed-in event.
func (p *Provider) SignIn(account auth.Account) {
	p.mu.Lock()
	p.account = &account
	p.mu.Unlock()
	p.emit(auth.Event{Kind: auth.SignedIn, Account: &account})
}

func (p *Provider) emit(ev auth.Event) {
	select {
	case p.events <- ev:
	default:
	}
}

var _ auth.Provider = (*Provider)(nil)

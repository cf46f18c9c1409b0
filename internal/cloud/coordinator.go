package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"carfund/internal/auth"
	"carfund/internal/core"
	"carfund/internal/state"
)

const (
	defaultDebounce       = 800 * time.Millisecond
	defaultRequestTimeout = 10 * time.Second
)

// Coordinator owns the sync protocol for one client instance: debounced
// pushes after local saves, and pull-and-reconcile on demand or on sign-in.
// Local storage stays authoritative; remote failures only ever affect the
// status display.
type Coordinator struct {
	store    *state.Store
	remote   RemoteStore
	accounts auth.Provider

	localKey       string
	debounce       time.Duration
	requestTimeout time.Duration
	now            func() time.Time
	onStatus       func(string)

	mu     sync.Mutex
	timer  *time.Timer
	status string
}

type Option func(*Coordinator)

// WithDebounce overrides the quiet interval before an automatic push.
func WithDebounce(d time.Duration) Option {
	return func(c *Coordinator) { c.debounce = d }
}

// WithRequestTimeout bounds each remote call.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.requestTimeout = d }
}

// WithStatusFunc registers a callback for status transitions.
func WithStatusFunc(fn func(string)) Option {
	return func(c *Coordinator) { c.onStatus = fn }
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

func NewCoordinator(store *state.Store, remote RemoteStore, accounts auth.Provider, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:          store,
		remote:         remote,
		accounts:       accounts,
		localKey:       state.LocalAccount,
		debounce:       defaultDebounce,
		requestTimeout: defaultRequestTimeout,
		now:            time.Now,
		status:         "Not signed in",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HandleLocalSave matches state.SaveListener; wire it with store.OnSave. It
// only schedules work and never blocks the save path.
func (c *Coordinator) HandleLocalSave(string, core.StateDocument) {
	c.SchedulePush()
}

// SchedulePush arms the debounced push. A repeat call before the quiet
// interval elapses cancels the prior schedule and starts over, so a burst of
// saves results in exactly one outbound write carrying the last state.
func (c *Coordinator) SchedulePush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		_ = c.Push(context.Background(), "Auto-synced")
	})
}

// Stop cancels any pending scheduled push.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Push uploads the current local document, overwriting the remote row. When
// nobody is signed in the push is silently skipped.
func (c *Coordinator) Push(ctx context.Context, successStatus string) error {
	account, err := c.accounts.Current(ctx)
	if err != nil {
		c.setStatus("Auth error: " + err.Error())
		return err
	}
	if account == nil {
		return nil
	}

	c.setStatus("Saving to cloud...")

	doc, err := c.store.Load(ctx, c.localKey)
	if err != nil {
		c.setStatus("Save failed: " + err.Error())
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		c.setStatus("Save failed: " + err.Error())
		return err
	}

	rctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()
	if err := c.remote.Upsert(rctx, account.ID, data); err != nil {
		c.setStatus("Save failed: " + err.Error())
		return fmt.Errorf("push state: %w", err)
	}

	if successStatus == "" {
		successStatus = "Saved"
	}
	c.setStatus(successStatus)
	return nil
}

// SyncNow runs the pull-and-reconcile protocol: fetch the remote row, adopt
// it wholesale if strictly newer by meta.lastModified, push the local
// document otherwise. A missing remote row seeds the remote from local.
func (c *Coordinator) SyncNow(ctx context.Context) error {
	account, err := c.accounts.Current(ctx)
	if err != nil {
		c.setStatus("Auth error: " + err.Error())
		return err
	}
	if account == nil {
		c.setStatus("Not signed in")
		return nil
	}

	c.setStatus("Pulling cloud state...")

	rctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	rec, err := c.remote.Fetch(rctx, account.ID)
	cancel()
	if errors.Is(err, ErrRemoteNotFound) {
		return c.Push(ctx, "No cloud state; uploaded local")
	}
	if err != nil {
		c.setStatus("Pull failed: " + err.Error())
		return fmt.Errorf("fetch remote state: %w", err)
	}

	remoteDoc, err := core.Decode(rec.Document, c.now())
	if err != nil {
		c.setStatus("Pull failed: " + err.Error())
		return fmt.Errorf("decode remote state: %w", err)
	}

	local, err := c.store.Load(ctx, c.localKey)
	if err != nil {
		c.setStatus("Pull failed: " + err.Error())
		return err
	}

	if remoteDoc.Meta.LastModified > local.Meta.LastModified {
		// Remote strictly newer: full replace, keeping the adopted timestamp.
		if _, err := c.store.Replace(ctx, c.localKey, remoteDoc); err != nil {
			c.setStatus("Pull failed: " + err.Error())
			return err
		}
		c.setStatus("Loaded cloud state")
		return nil
	}

	return c.Push(ctx, "Local newer; uploaded")
}

// Run consumes auth events until ctx is done, triggering an initial pull on
// every sign-in.
func (c *Coordinator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.accounts.Events():
			if !ok {
				return
			}
			switch ev.Kind {
			case auth.SignedIn:
				c.setStatus("Signed in")
				if err := c.SyncNow(ctx); err != nil {
					slog.WarnContext(ctx, "Initial sync after sign-in failed", "error", err)
				}
			case auth.SignedOut:
				c.setStatus("Signed out")
			}
		}
	}
}

// Status returns the latest terminal sync status.
func (c *Coordinator) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Coordinator) setStatus(s string) {
	c.mu.Lock()
	c.status = s
	fn := c.onStatus
	c.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

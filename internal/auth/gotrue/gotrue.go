// Package gotrue implements the auth provider against a GoTrue-style REST
// endpoint (passwordless magic-link sign-in).
package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"carfund/internal/auth"
)

const (
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

// ErrUnauthorized indicates the access token is expired or invalid.
var ErrUnauthorized = errors.New("gotrue: unauthorized (access token expired or invalid)")

// Client talks to a GoTrue auth endpoint. The magic-link flow completes out
// of band (the user clicks the emailed link); the resulting access token is
// handed back via SetSession.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client

	mu      sync.Mutex
	token   string
	account *auth.Account

	events chan auth.Event
}

// NewClient creates a client for the given endpoint and anon API key.
// Returns nil if either is empty.
func NewClient(baseURL, apiKey string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" || strings.TrimSpace(apiKey) == "" {
		return nil
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: requestTimeout},
		events:  make(chan auth.Event, 8),
	}
}

// BeginMagicLink asks the endpoint to email a sign-in link.
func (c *Client) BeginMagicLink(ctx context.Context, email, redirectTo string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("gotrue: email is required")
	}

	path := "/auth/v1/otp"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}

	body, err := json.Marshal(map[string]any{
		"email":       email,
		"create_user": true,
	})
	if err != nil {
		return fmt.Errorf("gotrue: encode otp request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, path, body, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gotrue: otp request failed: %s", readError(resp))
	}
	return nil
}

// SetSession adopts an access token obtained from the redirect, verifies it
// against the user endpoint and emits a signed-in event.
func (c *Client) SetSession(ctx context.Context, accessToken string) (*auth.Account, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, ErrUnauthorized
	}

	account, err := c.fetchUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.token = accessToken
	c.account = account
	c.mu.Unlock()

	c.emit(auth.Event{Kind: auth.SignedIn, Account: account})
	return account, nil
}

// Current returns the signed-in account, or nil when there is no session.
func (c *Client) Current(ctx context.Context) (*auth.Account, error) {
	c.mu.Lock()
	account := c.account
	c.mu.Unlock()
	return account, nil
}

// SignOut revokes the session and emits a signed-out event. Revocation
// failures are ignored; the local session is cleared regardless.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	token := c.token
	c.token = ""
	c.account = nil
	c.mu.Unlock()

	if token != "" {
		if resp, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, token); err == nil {
			resp.Body.Close()
		}
	}

	c.emit(auth.Event{Kind: auth.SignedOut})
	return nil
}

func (c *Client) Events() <-chan auth.Event {
	return c.events
}

func (c *Client) fetchUser(ctx context.Context, token string) (*auth.Account, error) {
	resp, err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gotrue: user request failed: %s", readError(resp))
	}

	var user struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("gotrue: read user response: %w", err)
	}
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("gotrue: parse user response: %w", err)
	}
	if user.ID == "" {
		return nil, ErrUnauthorized
	}
	return &auth.Account{ID: user.ID, Email: user.Email}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("gotrue: build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gotrue: %w", err)
	}
	return resp, nil
}

func (c *Client) emit(ev auth.Event) {
	select {
	case c.events <- ev:
	default:
		// Slow subscriber; drop rather than block the auth path.
	}
}

func readError(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return resp.Status
	}
	return fmt.Sprintf("%s: %s", resp.Status, msg)
}

var _ auth.Provider = (*Client)(nil)

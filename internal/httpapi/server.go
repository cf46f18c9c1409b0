package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"carfund/internal/auth"
	"carfund/internal/backup"
	"carfund/internal/cloud"
	"carfund/internal/engine"
	"carfund/internal/log"
	"carfund/internal/state"
)

// Deps are the collaborators the API server needs. Sync may be nil when no
// remote mirror is configured; the sync endpoints then report local-only mode.
type Deps struct {
	Store    *state.Store
	Engine   *engine.Service
	Backups  *backup.Service
	Sync     *cloud.Coordinator
	Accounts auth.Provider
	Logger   *log.Logger
	Now      func() time.Time
}

type Server struct {
	http.Server

	store    *state.Store
	engine   *engine.Service
	backups  *backup.Service
	sync     *cloud.Coordinator
	accounts auth.Provider
	now      func() time.Time

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		store:       deps.Store,
		engine:      deps.Engine,
		backups:     deps.Backups,
		sync:        deps.Sync,
		accounts:    deps.Accounts,
		now:         now,
		rateLimiter: newRateLimiter(),
	}
	s.Server = http.Server{
		Addr:    addr,
		Handler: log.Middleware(logger.WithComponent(log.ComponentHTTP))(mux),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/state", s.withGuards(s.handleGetState))
	mux.HandleFunc("GET /api/summary", s.withGuards(s.handleSummary))
	mux.HandleFunc("GET /api/ledger", s.withGuards(s.handleLedger))

	mux.HandleFunc("POST /api/entries", s.withGuards(s.handleRecordEntry))
	mux.HandleFunc("POST /api/salary", s.withGuards(s.handleSalary))
	mux.HandleFunc("POST /api/monthly-costs", s.withGuards(s.handleMonthlyCosts))
	mux.HandleFunc("POST /api/hours", s.withGuards(s.handleHoursWorked))
	mux.HandleFunc("POST /api/debt", s.withGuards(s.handleDebtPayment))

	mux.HandleFunc("GET /api/settings", s.withGuards(s.handleGetSettings))
	mux.HandleFunc("PUT /api/settings", s.withGuards(s.handleUpdateSettings))
	mux.HandleFunc("POST /api/reset", s.withGuards(s.handleReset))

	mux.HandleFunc("POST /api/sync", s.withGuards(s.handleSyncNow))
	mux.HandleFunc("GET /api/sync/status", s.withGuards(s.handleSyncStatus))

	mux.HandleFunc("GET /api/export", s.withGuards(s.handleExport))
	mux.HandleFunc("POST /api/import", s.withGuards(s.handleImport))

	mux.HandleFunc("POST /api/auth/magic-link", s.withGuards(s.handleBeginMagicLink))
	mux.HandleFunc("POST /api/auth/session", s.withGuards(s.handleSetSession))
	mux.HandleFunc("POST /api/auth/signout", s.withGuards(s.handleSignOut))
	mux.HandleFunc("GET /api/auth/status", s.withGuards(s.handleAuthStatus))

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withGuards adds security headers, rate limiting, and a request ID.
func (s *Server) withGuards(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		logger := log.FromContext(ctx).With(log.FieldRequestID, requestID)
		ctx = context.WithValue(ctx, log.LoggerContextKey, logger)
		r = r.WithContext(ctx)

		// Mutating requests are rate limited per client.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next(w, r)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Simple in-memory rate limiter, 60 mutating requests per client per minute.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

package backend

import (
	"context"
	"fmt"

	"carfund/internal/auth"
	"carfund/internal/auth/gotrue"
	"carfund/internal/auth/static"
	"carfund/internal/cloud"
	cloudmemory "carfund/internal/cloud/memory"
	"carfund/internal/cloud/postgres"
	"carfund/internal/config"
	"carfund/internal/log"
)

// RemoteType represents the configured remote mirror backend
type RemoteType string

const (
	NoneRemote     RemoteType = "none"
	MemoryRemote   RemoteType = "memory"
	PostgresRemote RemoteType = "postgres"
)

// String implements fmt.Stringer
func (rt RemoteType) String() string {
	return string(rt)
}

// IsValid returns true if the remote type is valid
func (rt RemoteType) IsValid() bool {
	switch rt {
	case NoneRemote, MemoryRemote, PostgresRemote:
		return true
	default:
		return false
	}
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the wired remote mirror and auth provider.
// Remote is nil when the remote backend is "none".
type Result struct {
	Remote  cloud.RemoteStore
	Auth    auth.Provider
	Cleanup CleanupFunc
}

// Factory creates a backend from application configuration
type Factory interface {
	Create(ctx context.Context, cfg *config.Config) (*Result, error)
}

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// Create implements Factory.Create
func (f *DefaultFactory) Create(ctx context.Context, cfg *config.Config) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app config is nil")
	}

	remoteType := RemoteType(cfg.RemoteBackend)
	if !remoteType.IsValid() {
		return nil, fmt.Errorf("invalid remote backend: %s", cfg.RemoteBackend)
	}

	result := &Result{
		Auth: f.createAuthProvider(cfg),
	}

	switch remoteType {
	case NoneRemote:
		f.logger.Info("Remote mirror disabled, running local-only")

	case MemoryRemote:
		result.Remote = cloudmemory.New()
		f.logger.Info("Initialized in-memory remote mirror")

	case PostgresRemote:
		store, err := postgres.New(cfg.RemoteDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres remote mirror: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to ensure postgres schema: %w", err)
		}
		result.Remote = store
		result.Cleanup = store.Close
		f.logger.Info("Initialized postgres remote mirror")
	}

	return result, nil
}

func (f *DefaultFactory) createAuthProvider(cfg *config.Config) auth.Provider {
	if client := gotrue.NewClient(cfg.AuthURL, cfg.AuthAnonKey); client != nil {
		f.logger.Info("Initialized GoTrue auth provider", "url", cfg.AuthURL)
		return client
	}
	f.logger.Info("No auth configured, using local signed-out provider")
	return static.New()
}

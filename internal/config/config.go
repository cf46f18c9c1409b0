package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Local storage
	SQLiteDBPath string

	// Remote mirror
	RemoteBackend string // none, memory, postgres
	RemoteDSN     string

	// Auth
	AuthURL     string
	AuthAnonKey string

	// AMQP (optional, enables the out-of-process sync worker)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Sync
	SyncDebounce       time.Duration
	SyncRequestTimeout time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8082"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/carfund.db"),

		RemoteBackend: getEnv("REMOTE_BACKEND", "none"),
		RemoteDSN:     getEnv("REMOTE_DSN", ""),

		AuthURL:     getEnv("AUTH_URL", ""),
		AuthAnonKey: getEnv("AUTH_ANON_KEY", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "carfund"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_state"),

		SyncDebounce:       getEnvDuration("SYNC_DEBOUNCE", 800*time.Millisecond),
		SyncRequestTimeout: getEnvDuration("SYNC_REQUEST_TIMEOUT", 10*time.Second),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	switch c.RemoteBackend {
	case "none", "memory":
	case "postgres":
		if c.RemoteDSN == "" {
			errors = append(errors, "REMOTE_DSN is required when using the postgres remote backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid remote backend '%s': must be one of [none memory postgres]", c.RemoteBackend))
	}

	if c.AuthURL != "" {
		if parsedURL, err := url.Parse(c.AuthURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid auth URL '%s': %v", c.AuthURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid auth URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
		if c.AuthAnonKey == "" {
			errors = append(errors, "AUTH_ANON_KEY cannot be empty when AUTH_URL is provided")
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SyncDebounce < 10*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid sync debounce %v: must be at least 10ms", c.SyncDebounce))
	} else if c.SyncDebounce > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid sync debounce %v: must be at most 1 minute", c.SyncDebounce))
	}

	if c.SyncRequestTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync request timeout %v: must be at least 1 second", c.SyncRequestTimeout))
	} else if c.SyncRequestTimeout > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid sync request timeout %v: must be at most 1 minute", c.SyncRequestTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

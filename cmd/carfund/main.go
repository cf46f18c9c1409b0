package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"carfund/internal/amqp"
	"carfund/internal/backend"
	"carfund/internal/backup"
	"carfund/internal/cloud"
	"carfund/internal/config"
	"carfund/internal/engine"
	"carfund/internal/httpapi"
	"carfund/internal/log"
	"carfund/internal/state"
	"carfund/internal/storage"
	"carfund/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository",
			log.FieldError, err.Error(), "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	store := state.NewStore(repo)

	result, err := backend.NewFactory(logger).Create(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err.Error())
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", log.FieldError, err.Error())
			}
		}()
	}

	var coordinator *cloud.Coordinator
	if result.Remote != nil {
		coordinator = cloud.NewCoordinator(store, result.Remote, result.Auth,
			cloud.WithDebounce(cfg.SyncDebounce),
			cloud.WithRequestTimeout(cfg.SyncRequestTimeout),
		)
		store.OnSave(coordinator.HandleLocalSave)
		defer coordinator.Stop()
	}

	// Optional out-of-process sync: local saves publish a state-changed
	// message and the worker binary mirrors the document.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without worker sync",
				log.FieldError, err.Error())
		} else {
			defer amqpClient.Close()
			store.OnSave(worker.NewSaveNotifier(amqpClient, result.Auth))
			logger.Info("Initialized AMQP publisher",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	var scheduler backup.PushScheduler
	if coordinator != nil {
		scheduler = coordinator
	}

	srv := httpapi.NewServer(":"+cfg.Port, httpapi.Deps{
		Store:    store,
		Engine:   engine.NewService(store),
		Backups:  backup.NewService(store, scheduler),
		Sync:     coordinator,
		Accounts: result.Auth,
		Logger:   logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting carfund server",
			"port", cfg.Port, "remote_backend", cfg.RemoteBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if coordinator != nil {
		g.Go(func() error {
			coordinator.Run(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notebook/app/cache"
	"notebook/app/config"
	"notebook/app/logger"
	"notebook/app/repositories"
	"notebook/app/routes"
)

// RunAppServer loads the configuration at path and serves the API until
// SIGINT or SIGTERM. It returns the process exit code.
func RunAppServer(path string) int {
	cfg, err := config.LoadFrom(path)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		return 1
	}
	log := logger.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Serve(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		return 1
	}
	return 0
}

// Serve runs the API on cfg.Server.Addr until ctx is cancelled, then shuts
// down gracefully.
func Serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
	}
	return serve(ctx, cfg, log, ln)
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger, ln net.Listener) error {
	path := cfg.Database.Path
	if cfg.Database.InMemory {
		path = ""
	}
	store, err := repositories.Open(path)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("close database", "error", err)
		}
	}()

	responses, err := cache.New(cacheConfig(cfg.Cache))
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("create response cache: %w", err)
	}
	defer responses.Close()

	router := routes.SetupRoutes(routes.Dependencies{
		Posts:  store.Posts(),
		Users:  store.Users(),
		Cache:  responses,
		Auth:   cfg.Auth,
		Logger: log,
	})

	srv := &http.Server{
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("notebook listening", "addr", ln.Addr().String(), "in_memory", cfg.Database.InMemory)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func cacheConfig(c config.Cache) cache.Config {
	return cache.Config{
		Windows: map[cache.Class]time.Duration{
			cache.ClassList:       c.ListTTL,
			cache.ClassCategories: c.AggregateTTL,
			cache.ClassTags:       c.AggregateTTL,
		},
		MaxCost: c.MaxCostBytes,
	}
}

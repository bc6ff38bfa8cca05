package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"remote-viewing/internal/config"
	"remote-viewing/internal/db"
	"remote-viewing/internal/images"
	"remote-viewing/internal/metrics"
	"remote-viewing/internal/scheduler"
	"remote-viewing/internal/server"
	"remote-viewing/internal/viewing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Info("failed to load .env", "error", err)
	}
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	config.SetupLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	store, sessions, closeStores, err := openStores(cfg)
	if err != nil {
		return fmt.Errorf("storage setup failed: %w", err)
	}
	defer closeStores()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observer := metrics.New(reg)

	sweeper := viewing.NewSweeper(&viewing.SweeperConfig{
		Store:           store,
		Location:        cfg.Location,
		RetentionWindow: cfg.RetentionWindow,
		Observer:        observer,
	})
	manager, err := viewing.NewManager(&viewing.Config{
		Store:            store,
		Images:           imageSource(cfg),
		Allocator:        viewing.NewAllocator(store, viewing.AllocatorConfig{MaxAttempts: cfg.AllocatorMaxAttempts}),
		Sweeper:          sweeper,
		Location:         cfg.Location,
		EmptyGuessPolicy: viewing.EmptyGuessPolicy(cfg.EmptyGuessPolicy),
		Observer:         observer,
	})
	if err != nil {
		return fmt.Errorf("manager setup failed: %w", err)
	}

	retention := scheduler.New("retention", cfg.SweepInterval, func(ctx context.Context) error {
		_, err := sweeper.PurgeExpired(ctx)
		return err
	})
	retention.Start()
	defer retention.Stop()

	webSessions := scheduler.New("web-sessions", cfg.SessionLifetime, func(ctx context.Context) error {
		pruned, err := sessions.Prune(ctx)
		if pruned > 0 {
			slog.Info("expired web sessions pruned", "count", pruned)
		}
		return err
	})
	webSessions.Start()
	defer webSessions.Stop()

	srv := server.New(cfg, server.Options{
		Manager:  manager,
		Sessions: sessions,
		Gatherer: reg,
	})
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("remote-viewing server listening", "addr", httpServer.Addr, "retention", cfg.RetentionWindow, "sweep_interval", cfg.SweepInterval)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("cannot start HTTP server: %w", err)
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down")
	retention.Stop()
	webSessions.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// openStores picks the round store and the web session backend. Without a
// database everything stays in memory.
func openStores(cfg config.Config) (viewing.Store, server.SessionBackend, func(), error) {
	var (
		store    viewing.Store
		sessions server.SessionBackend
		closers  []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL is not set; sessions are kept in memory")
		store = viewing.NewMemoryStore()
		sessions = server.NewMemorySessions(cfg.SessionLifetime)
	} else {
		conn, err := db.Open(cfg)
		if err != nil {
			return nil, nil, closeAll, err
		}
		if sqlDB, err := conn.DB(); err == nil {
			closers = append(closers, func() { _ = sqlDB.Close() })
		}
		if err := db.Migrate(conn); err != nil {
			closeAll()
			return nil, nil, func() {}, err
		}
		store = viewing.NewGormStore(conn, cfg.Location)
		sessions = server.NewGormSessions(conn, cfg.SessionLifetime)
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			_ = client.Close()
			closeAll()
			return nil, nil, func() {}, err
		}
		closers = append(closers, func() { _ = client.Close() })
		sessions = server.NewRedisSessions(client, cfg.SessionLifetime)
	}
	return store, sessions, closeAll, nil
}

func imageSource(cfg config.Config) viewing.ImageSource {
	if len(cfg.ImageURLs) > 0 {
		slog.Info("using static image list", "count", len(cfg.ImageURLs))
		return images.NewStatic(cfg.ImageURLs)
	}
	if cfg.UnsplashAccessKey == "" {
		slog.Warn("UNSPLASH_ACCESS_KEY is not set; image fetches will fail")
	}
	return images.NewUnsplash(cfg.UnsplashAPIURL, cfg.UnsplashAccessKey, cfg.ImageTimeout)
}

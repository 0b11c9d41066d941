package main

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

	"github.com/joho/godotenv"
	"github.com/stridelog/stridelog/internal/client/oura"
	"github.com/stridelog/stridelog/internal/client/strava"
	"github.com/stridelog/stridelog/internal/config"
	xredis "github.com/stridelog/stridelog/internal/redis"
	"github.com/stridelog/stridelog/internal/server"
	"github.com/stridelog/stridelog/internal/session"
	"github.com/stridelog/stridelog/internal/storage"
	"github.com/stridelog/stridelog/internal/xhttp/middleware"
	"github.com/stridelog/stridelog/internal/xslog"
	"github.com/stridelog/stridelog/internal/xsync"
)

const (
	keyPort = "port"

	// gives in-flight requests and background cache writes a window to
	// finish before the listener closes
	shutdownGracePeriod = 2 * time.Second
)

func main() {
	_ = godotenv.Load()

	logger := xslog.NewLoggerFromEnv(os.Stdout)
	slog.SetDefault(logger)

	ctx := context.Background()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", xslog.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Read()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if cfg.Env.IsDevelopment() {
		logger = xslog.NewLogger(os.Stdout, xslog.LevelDebug)
		slog.SetDefault(logger)
	}

	cache := initCache(ctx, cfg, logger)

	stravaClient, stravaTokens := initStrava(cfg, logger)
	ouraClient := oura.New(cfg.Oura.AccessToken, oura.WithLogger(logger))

	fetcher := xsync.NewFetcher(stravaClient, ouraClient, logger)
	syncService := xsync.NewService(fetcher, cache, cfg.Cache.TTL, logger)

	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = session.NewID()
	}
	logger.InfoContext(ctx, "session initialized", xslog.SessionID(sessionID))

	var cachePing func(ctx context.Context) error
	if p, ok := cache.(storage.Pinger); ok {
		cachePing = p.Ping
	}
	handler := server.NewHandler(syncService, sessionID, cachePing)

	wrapped := middleware.Chain(handler.Routes(),
		middleware.Recovery,
		middleware.Logging,
		middleware.Logger(logger),
		middleware.RequestID,
	)

	shutdownCoordinator := server.NewShutdownCoordinator(shutdownGracePeriod)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           wrapped,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return shutdownCoordinator.BaseContext()
		},
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.InfoContext(ctx, "starting server", slog.String(keyPort, cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "server error", xslog.Error(err))
		}
	}()

	<-done
	logger.InfoContext(ctx, "shutdown signal received, initiating graceful shutdown")

	shutdownCoordinator.InitiateShutdown()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// the upstream rotates the refresh token on every exchange; the one in
	// the environment is stale once a refresh has happened
	if snap := stravaTokens.Snapshot(); snap.RefreshToken != cfg.Strava.RefreshToken {
		logger.WarnContext(ctx, "strava refresh token rotated this run, update STRAVA_REFRESH_TOKEN before the next start")
	}

	logger.InfoContext(ctx, "server stopped")
	return nil
}

// initCache picks the cache backend: Redis when configured and reachable,
// in-memory when unconfigured. An unreachable Redis degrades to the no-op
// backend so every request fetches live rather than failing.
func initCache(ctx context.Context, cfg config.Config, logger *slog.Logger) storage.SessionCache {
	if cfg.Redis.URL == "" {
		if cfg.Env.IsProduction() {
			logger.WarnContext(ctx, "no redis configured in production, cache is process-local")
		} else {
			logger.InfoContext(ctx, "no redis configured, using in-memory cache")
		}
		return storage.NewMemorySessionCache()
	}

	client, err := xredis.New(ctx, xredis.Config{URL: cfg.Redis.URL})
	if err != nil {
		logger.WarnContext(ctx, "redis unavailable, caching disabled", xslog.Error(err))
		return storage.NoopSessionCache{}
	}

	logger.InfoContext(ctx, "using redis cache backend")
	return storage.NewRedisSessionCache(storage.RedisConfig{Client: client})
}

func initStrava(cfg config.Config, logger *slog.Logger) (*strava.Client, *strava.TokenSource) {
	cred := &strava.Credential{
		AccessToken:  cfg.Strava.AccessToken,
		RefreshToken: cfg.Strava.RefreshToken,
	}
	if cfg.Strava.TokenExpiry > 0 {
		cred.Expiry = time.Unix(cfg.Strava.TokenExpiry, 0)
	}

	tokenSource := strava.NewTokenSource(
		strava.NewOAuthConfig(cfg.Strava.ClientID, cfg.Strava.ClientSecret),
		cred,
	)
	return strava.New(tokenSource, strava.WithLogger(logger)), tokenSource
}

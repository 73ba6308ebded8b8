// Package main is the entry point of the Apple Market service.
//
// @title           Apple Market API
// @version         1.0
// @description     Second-hand iPhone listings with photo uploads, accounts and a per-user conversation with the administrator.
// @BasePath        /
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/apple-market/internal/config"
	httpapi "github.com/tbourn/apple-market/internal/http"
	"github.com/tbourn/apple-market/internal/observability"
	"github.com/tbourn/apple-market/internal/repo"
	"github.com/tbourn/apple-market/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	sessionPurgeInterval = time.Hour
	shutdownGrace        = 30 * time.Second
)

func main() {
	os.Exit(run())
}

// run wires and serves the application. It returns the process exit code so
// that deferred cleanup runs on every path.
func run() int {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 2
	}
	logger := sysutil.SetupLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		logger.Error().Err(err).Msg("otel setup failed")
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			logger.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.DBDriver).Msg("open database")
		return 1
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repo.AutoMigrate(db); err != nil {
		logger.Error().Err(err).Msg("migrate")
		return 1
	}
	if cfg.OTEL.Enabled {
		if err := observability.InstrumentDB(db); err != nil {
			logger.Error().Err(err).Msg("instrument database")
			return 1
		}
	}

	r := gin.New()
	svc, err := httpapi.RegisterRoutes(r, db, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("register routes")
		return 1
	}

	if err := svc.Auth.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		logger.Error().Err(err).Msg("admin bootstrap")
		return 1
	}
	go purgeSessions(ctx, svc)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("db_driver", cfg.DBDriver).
			Str("upload_dir", cfg.UploadDir).
			Str("version", version).
			Msg("server starting")
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
			return 1
		}
		return 0
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		_ = srv.Close()
		return 1
	}
	logger.Info().Msg("server stopped")
	return 0
}

// purgeSessions removes expired login sessions at startup and then every
// sessionPurgeInterval until ctx is done.
func purgeSessions(ctx context.Context, svc *httpapi.Services) {
	purge := func() {
		n, err := svc.Auth.PurgeExpiredSessions(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Warn().Err(err).Msg("purge expired sessions")
			}
			return
		}
		if n > 0 {
			log.Info().Int64("sessions", n).Msg("expired sessions purged")
		}
	}

	purge()
	t := time.NewTicker(sessionPurgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			purge()
		}
	}
}

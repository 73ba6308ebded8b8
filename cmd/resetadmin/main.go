// Command resetadmin deletes the administrator account, together with its
// sessions, and creates it again with a new password.
//
// Usage:
//
//	resetadmin -username root -password s3cret -yes
//
// Flags fall back to ADMIN_USERNAME and ADMIN_PASSWORD. Confirmation may also
// be given with RESET_ADMIN_CONFIRM=1.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/apple-market/internal/auth"
	"github.com/tbourn/apple-market/internal/config"
	"github.com/tbourn/apple-market/internal/repo"
	"github.com/tbourn/apple-market/internal/services"
	"github.com/tbourn/apple-market/internal/sysutil"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run performs the reset and returns the process exit code so that deferred
// cleanup runs on every path.
func run(args []string) int {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("resetadmin", flag.ContinueOnError)
	var (
		username = fs.String("username", "", "administrator username (default $ADMIN_USERNAME)")
		password = fs.String("password", "", "administrator password (default $ADMIN_PASSWORD)")
		yes      = fs.Bool("yes", false, "confirm deletion of the existing account")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 2
	}
	logger := sysutil.SetupLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty, "resetadmin")

	name := sysutil.FirstNonEmpty(*username, cfg.Admin.Username)
	pass := sysutil.FirstNonEmpty(*password, cfg.Admin.Password)
	if name == "" || pass == "" {
		fmt.Fprintln(os.Stderr, "username and password are required (flags or ADMIN_USERNAME/ADMIN_PASSWORD)")
		return 2
	}
	if !*yes && !sysutil.IsTruthy(os.Getenv("RESET_ADMIN_CONFIRM")) {
		fmt.Fprintf(os.Stderr, "refusing to reset %q without -yes or RESET_ADMIN_CONFIRM=1\n", name)
		return 2
	}

	db, err := repo.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Error().Err(err).Msg("open database")
		return 1
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repo.AutoMigrate(db); err != nil {
		logger.Error().Err(err).Msg("migrate")
		return 1
	}

	// Tokens are never issued here; the signer only satisfies the service.
	signer, err := auth.NewTokenSigner(cfg.Session.Secret)
	if err != nil {
		logger.Error().Err(err).Msg("token signer")
		return 1
	}
	svc := services.NewAuthService(db, auth.NewHasher(cfg.Session.BcryptCost), signer, cfg.Session.TTL,
		log.With().Str("component", "auth").Logger())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	u, err := svc.ResetAdmin(ctx, name, pass)
	if err != nil {
		logger.Error().Err(err).Str("username", name).Msg("reset admin")
		return 1
	}
	logger.Info().Uint("user_id", u.ID).Str("username", u.Username).Msg("admin account recreated")
	return 0
}

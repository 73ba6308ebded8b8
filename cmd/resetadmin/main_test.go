package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tbourn/apple-market/internal/repo"
)

func setResetEnv(t *testing.T) string {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "market.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", dsn)
	t.Setenv("SESSION_SECRET", "resetadmin-test-secret-0123")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("ADMIN_USERNAME", "")
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("RESET_ADMIN_CONFIRM", "")
	return dsn
}

func TestRun_RefusesWithoutConfirmationOrCredentials(t *testing.T) {
	setResetEnv(t)

	cases := map[string][]string{
		"no confirmation": {"-username", "root", "-password", "pw"},
		"no password":     {"-username", "root", "-yes"},
		"unknown flag":    {"-force"},
	}
	for name, args := range cases {
		if code := run(args); code != 2 {
			t.Fatalf("%s: exit code = %d; want 2", name, code)
		}
	}
}

func TestRun_ConfigErrorExitsWithoutPanicking(t *testing.T) {
	setResetEnv(t)
	t.Setenv("SESSION_SECRET", "short")
	if code := run([]string{"-username", "root", "-password", "pw", "-yes"}); code != 2 {
		t.Fatalf("exit code = %d; want 2", code)
	}
}

func TestRun_RecreatesAdminAndReleasesDB(t *testing.T) {
	dsn := setResetEnv(t)

	if code := run([]string{"-username", "root", "-password", "first", "-yes"}); code != 0 {
		t.Fatalf("first reset exit code = %d", code)
	}
	t.Setenv("RESET_ADMIN_CONFIRM", "yes")
	if code := run([]string{"-username", "root", "-password", "second"}); code != 0 {
		t.Fatalf("second reset exit code = %d", code)
	}

	db, err := repo.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	n, err := repo.CountUsersByUsername(context.Background(), db, "root")
	if err != nil || n != 1 {
		t.Fatalf("expected exactly one root, got n=%d err=%v", n, err)
	}
	u, err := repo.GetUserByUsername(context.Background(), db, "root")
	if err != nil || !u.IsAdmin {
		t.Fatalf("root must be admin: %+v err=%v", u, err)
	}
}

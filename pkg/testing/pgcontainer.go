// Package testing starts throwaway PostgreSQL and Elasticsearch containers
// for integration tests.
package testing

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const defaultPGImage = "postgres:17.5"

type PGContainer struct {
	Container  testcontainers.Container
	ConnString string
}

type PGConfig struct {
	Image    string
	Database string
	Username string
	Password string
	// MigrationsDir holds *.up.sql files applied at startup. Empty means the
	// repository's db/migrations.
	MigrationsDir string
}

func NewPGContainer(ctx context.Context, cfg PGConfig) (*PGContainer, error) {
	if cfg.Image == "" {
		cfg.Image = defaultPGImage
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = repoMigrations()
	}

	scripts, err := filepath.Glob(filepath.Join(cfg.MigrationsDir, "*.up.sql"))
	if err != nil {
		return nil, fmt.Errorf("failed to find migration files: %w", err)
	}
	sort.Strings(scripts)

	c, err := postgres.Run(ctx, cfg.Image,
		postgres.WithDatabase(cfg.Database),
		postgres.WithUsername(cfg.Username),
		postgres.WithPassword(cfg.Password),
		postgres.WithInitScripts(scripts...),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}
	return &PGContainer{Container: c, ConnString: connStr}, nil
}

// NewPGContainerWithCleanup starts a migrated database and terminates it
// when tb finishes.
func NewPGContainerWithCleanup(ctx context.Context, tb testing.TB) *PGContainer {
	tb.Helper()

	c, err := NewPGContainer(ctx, PGConfig{
		Database: "apikit_test",
		Username: "test",
		Password: "test",
	})
	if err != nil {
		tb.Fatalf("failed to create postgres container: %v", err)
	}

	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(c.Container); err != nil {
			tb.Logf("failed to terminate postgres container: %v", err)
		}
	})
	return c
}

// Truncate empties tables and restarts their id sequences.
func (c *PGContainer) Truncate(ctx context.Context, tb testing.TB, tables ...string) {
	tb.Helper()

	conn, err := pgx.Connect(ctx, c.ConnString)
	if err != nil {
		tb.Fatalf("failed to connect to postgres container: %v", err)
	}
	defer conn.Close(ctx)

	for _, table := range tables {
		sql := "TRUNCATE TABLE " + pgx.Identifier{table}.Sanitize() + " RESTART IDENTITY"
		if _, err := conn.Exec(ctx, sql); err != nil {
			tb.Fatalf("failed to truncate %s: %v", table, err)
		}
	}
}

func repoMigrations() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "db", "migrations")
}

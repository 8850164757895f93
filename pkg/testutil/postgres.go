// Package testutil starts throwaway infrastructure for repository tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/tendant/agroyield/pkg/migrations"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// NewPostgres starts a postgres:16-alpine container with the embedded schema
// applied and returns a pool to it. The container is removed when the test ends.
// Tests are skipped in -short mode.
func NewPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()

	scripts, err := migrations.UpScripts()
	require.NoError(t, err)
	initFile := filepath.Join(t.TempDir(), "init.sql")
	require.NoError(t, os.WriteFile(initFile, []byte(strings.Join(scripts, "\n\n")), 0o644))

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithInitScripts(initFile),
		postgres.WithDatabase("agro_db"),
		postgres.WithUsername("agro"),
		postgres.WithPassword("pwd"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)

	connString, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})
	return pool
}

// Package dbtest wires integration tests to a real PostgreSQL database.
//
// Tests call Open, which skips the test unless TEST_DATABASE_URL is set, applies the
// embedded migrations and returns a *db.DB. Test data is namespaced with Name so that
// packages running in parallel against the same database do not observe each other.
package dbtest

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devactivity/dasar-actix-web/db"
)

// EnvURL names the variable holding the test database DSN.
const EnvURL = "TEST_DATABASE_URL"

// Open returns a migrated database handle or skips the test.
func Open(t testing.TB) *db.DB {
	t.Helper()

	dsn := os.Getenv(EnvURL)
	if dsn == "" {
		t.Skipf("%s not set; skipping integration test", EnvURL)
	}

	require.NoError(t, db.RunMigrations(dsn, zap.NewNop()))

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return db.New(pool, 3*time.Second)
}

// Name returns prefix followed by a random suffix, at most 20 characters long
// (the username column limit).
func Name(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	name := prefix + "_" + suffix
	if len(name) > 20 {
		name = name[len(name)-20:]
	}
	return name
}

// CreateUser inserts a user row directly and returns its id.
func CreateUser(t testing.TB, d *db.DB, username string) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := d.Pool.QueryRow(context.Background(),
		`INSERT INTO users (username, email, password) VALUES ($1, $2, $3) RETURNING id`,
		username, strings.ToLower(username)+"@example.com", "not-a-real-hash",
	).Scan(&id)
	require.NoError(t, err)
	return id
}

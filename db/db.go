// Package db provides database connectivity and migration functionality.
// It builds the pgx connection pool, wraps it in DB (which bounds how long a request may
// wait for a connection), and applies the embedded schema migrations with golang-migrate.
package db

import (
	"context"
	"errors"
	"fmt"
	// `time` is used for the pool lifetimes and the connect, ping and acquire timeouts.
	"time"

	// `golang-migrate` applies versioned SQL migrations and records the current version
	// in a schema_migrations table.
	"github.com/golang-migrate/migrate/v4"
	// Registers the "postgres" database driver used by migrate.NewWithSourceInstance.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	// `iofs` reads migrations from an fs.FS, here the files embedded by the migrations package.
	"github.com/golang-migrate/migrate/v4/source/iofs"
	// `pgx` is the PostgreSQL driver; `pgconn` carries its low-level error type (*pgconn.PgError)
	// and `pgxpool` the connection pool shared by every service.
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	// database/sql driver behind migrate's postgres driver.
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/devactivity/dasar-actix-web/apperror"
	"github.com/devactivity/dasar-actix-web/config"
	"github.com/devactivity/dasar-actix-web/migrations"
)

const (
	maxConnIdleTime = 10 * time.Minute
	maxConnLifetime = 30 * time.Minute
)

// Querier is the subset of pgx shared by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
// Query helpers accept it so the same SQL runs inside or outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB wraps the connection pool. Every connection checkout goes through Acquire,
// which fails fast once AcquireTimeout elapses instead of queueing indefinitely.
type DB struct {
	Pool           *pgxpool.Pool
	AcquireTimeout time.Duration
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool, acquireTimeout time.Duration) *DB {
	return &DB{Pool: pool, AcquireTimeout: acquireTimeout}
}

// Connect establishes the PostgreSQL connection pool described by cfg and verifies it with a ping.
func Connect(cfg *config.PoolConfig) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, apperror.NewConfigError(fmt.Sprintf("error parsing DSN for database %s", cfg.DBName), err)
	}

	// Further configure the pool settings directly on the parsed config.
	poolConfig.MaxConns = int32(cfg.MaxSize)
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.MaxConnLifetime = maxConnLifetime

	// Bound pool creation so an unreachable database does not hang startup.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error creating pgxpool for database %s", cfg.DBName), err)
	}

	// pgxpool connects lazily, so ping once to find a wrong password or host at startup
	// rather than on the first request.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error connecting to the database %s", cfg.DBName), err)
	}

	return New(pool, cfg.AcquireTimeout), nil
}

// Close closes every connection in the pool.
func (d *DB) Close() {
	d.Pool.Close()
}

// Ping checks that a connection can be acquired and used.
func (d *DB) Ping(ctx context.Context) error {
	conn, err := d.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	if err := conn.Ping(ctx); err != nil {
		return apperror.NewDatabaseError("database ping failed", err)
	}
	return nil
}

// Acquire checks a connection out of the pool, waiting at most AcquireTimeout.
// The returned connection is not bound to the timeout; callers keep using ctx for queries
// and must call Release.
func (d *DB) Acquire(ctx context.Context) (*pgxpool.Conn, error) {
	acquireCtx := ctx
	if d.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, d.AcquireTimeout)
		defer cancel()
	}

	conn, err := d.Pool.Acquire(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, apperror.NewInternalError("timed out waiting for a database connection", err)
		}
		return nil, apperror.NewDatabaseError("failed to acquire database connection", err)
	}
	return conn, nil
}

// WithConn runs fn on a single checked-out connection.
func (d *DB) WithConn(ctx context.Context, fn func(q Querier) error) error {
	conn, err := d.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return fn(conn)
}

// WithTx runs fn inside a read-write transaction. The transaction commits when fn returns nil
// and rolls back when fn returns an error or panics.
func (d *DB) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return d.withTx(ctx, pgx.TxOptions{}, fn)
}

// WithReadTx runs fn inside a read-only REPEATABLE READ transaction, so every statement in fn
// observes the same snapshot.
func (d *DB) WithReadTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return d.withTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
}

func (d *DB) withTx(ctx context.Context, opts pgx.TxOptions, fn func(tx pgx.Tx) error) (err error) {
	conn, err := d.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	// `BeginTx` starts the transaction on this connection; every statement issued through tx
	// runs on it until Commit or Rollback.
	tx, err := conn.BeginTx(ctx, opts)
	if err != nil {
		return apperror.NewDatabaseError("failed to begin transaction", err)
	}

	// The named return `err` lets this deferred function see what fn returned and decide
	// between commit and rollback.
	defer func() {
		// Rollback must run even when the request context is already cancelled.
		rollbackCtx := context.WithoutCancel(ctx)
		if p := recover(); p != nil {
			_ = tx.Rollback(rollbackCtx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(rollbackCtx)
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = apperror.NewDatabaseError("failed to commit transaction", commitErr)
		}
	}()

	return fn(tx)
}

// RunMigrations applies any pending migrations embedded in the migrations package.
// migrate.ErrNoChange is not treated as an error.
func RunMigrations(dsn string, logger *zap.Logger) error {
	// Wrap the embedded files as a migration source. The files are compiled into the binary,
	// so the working directory of the process does not matter.
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return apperror.NewMigrationError("failed to open embedded migrations", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return apperror.NewMigrationError("failed to create migrator", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("error closing migrator", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
		}
	}()

	// `m.Up()` applies every migration newer than the recorded version.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperror.NewMigrationError("failed to run migrations", err)
	}

	version, dirty, err := m.Version()
	if err == nil {
		logger.Info("database schema is up to date", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}
	return nil
}

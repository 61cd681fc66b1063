package server

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ventas/internal/common"
	"github.com/dmitrijs2005/ventas/internal/server/config"
	"github.com/dmitrijs2005/ventas/internal/server/lockout"
	"github.com/dmitrijs2005/ventas/internal/server/repositories/lockouts"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// OpenDB opens a pgx-backed *sql.DB and verifies the connection.
func OpenDB(ctx context.Context, dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenLockoutStore returns the configured lockout backend and a func that
// releases it.
func OpenLockoutStore(ctx context.Context, c *config.Config, db *sql.DB) (lockout.Store, func(), error) {
	switch c.LockoutBackend {
	case config.LockoutBackendPostgres:
		return lockouts.NewPostgresRepository(db), func() {}, nil

	case config.LockoutBackendRedis:
		pingCtx, cancel := context.WithTimeout(ctx, c.ExternalCallTimeout)
		defer cancel()
		s, err := lockout.NewRedisStoreFromURL(pingCtx, c.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	case config.LockoutBackendBolt:
		s, err := lockout.OpenBoltStore(c.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", common.ErrUnknownLockoutBackend, c.LockoutBackend)
	}
}

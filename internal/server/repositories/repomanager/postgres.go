// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/ventas/internal/dbx"
	"github.com/dmitrijs2005/ventas/internal/server/migrations"
	"github.com/dmitrijs2005/ventas/internal/server/repositories/lockouts"
	"github.com/dmitrijs2005/ventas/internal/server/repositories/reference"
	"github.com/dmitrijs2005/ventas/internal/server/repositories/sales"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Reference returns a reference.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Reference(db dbx.DBTX) reference.Repository {
	return reference.NewPostgresRepository(db)
}

// Sales returns a sales.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Sales(db dbx.DBTX) sales.Repository {
	return sales.NewPostgresRepository(db)
}

// Lockouts returns the Postgres lockout store bound to the provided DBTX.
func (m *PostgresRepositoryManager) Lockouts(db dbx.DBTX) *lockouts.PostgresRepository {
	return lockouts.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

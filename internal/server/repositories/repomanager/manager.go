package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/ventas/internal/dbx"
	"github.com/dmitrijs2005/ventas/internal/server/repositories/lockouts"
	"github.com/dmitrijs2005/ventas/internal/server/repositories/reference"
	"github.com/dmitrijs2005/ventas/internal/server/repositories/sales"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Reference(db dbx.DBTX) reference.Repository
	Sales(db dbx.DBTX) sales.Repository
	Lockouts(db dbx.DBTX) *lockouts.PostgresRepository
}

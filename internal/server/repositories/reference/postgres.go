package reference

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ventas/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) exists(ctx context.Context, query string, arg string) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return found, nil
}

func (r *PostgresRepository) IsBlocked(ctx context.Context, seller string) (bool, error) {
	query :=
		`SELECT EXISTS (SELECT 1 FROM vendedores_bloqueados WHERE nombre_vendedor = $1)`
	return r.exists(ctx, query, seller)
}

func (r *PostgresRepository) IsRegistered(ctx context.Context, seller string) (bool, error) {
	query :=
		`SELECT EXISTS (SELECT 1 FROM vendedores_registrados WHERE nombre = $1)`
	return r.exists(ctx, query, seller)
}

func (r *PostgresRepository) IsValidSerial(ctx context.Context, serial string) (bool, error) {
	query :=
		`SELECT EXISTS (SELECT 1 FROM series_validas WHERE codigo_serie = $1)`
	return r.exists(ctx, query, serial)
}

func (r *PostgresRepository) Unblock(ctx context.Context, seller string) error {
	query := `DELETE FROM vendedores_bloqueados WHERE nombre_vendedor = $1`

	if _, err := r.db.ExecContext(ctx, query, seller); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

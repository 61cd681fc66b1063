package sales

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ventas/internal/dbx"
	"github.com/dmitrijs2005/ventas/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	query :=
		`INSERT INTO ventas (nombre_vendedor, numero_serie, foto_local, foto_url, fecha)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		sale.SalespersonID, sale.SerialCode, sale.PhotoKey, sale.PhotoURL, sale.SubmittedAt).Scan(&sale.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return sale, nil
}

func (r *PostgresRepository) ListNewestFirst(ctx context.Context) ([]*models.Sale, error) {
	query :=
		`SELECT id, nombre_vendedor, numero_serie, foto_local, foto_url, fecha
		 FROM ventas
		 ORDER BY fecha DESC, id DESC
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Sale, 0)
	for rows.Next() {
		s := &models.Sale{}
		if err := rows.Scan(&s.ID, &s.SalespersonID, &s.SerialCode, &s.PhotoKey, &s.PhotoURL, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		s.SubmittedAt = s.SubmittedAt.UTC()
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Package sales persists accepted submissions in the ventas table.
package sales

import (
	"context"

	"github.com/dmitrijs2005/ventas/internal/server/models"
)

type Repository interface {
	// Create inserts sale and fills in its ID and SubmittedAt.
	Create(ctx context.Context, sale *models.Sale) (*models.Sale, error)
	// ListNewestFirst returns every sale ordered by submission time, newest first.
	ListNewestFirst(ctx context.Context) ([]*models.Sale, error)
}

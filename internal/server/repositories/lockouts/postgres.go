// Package lockouts keeps per-salesperson failed-attempt counters in the
// seller_lockouts table. It is the default backing store of the lockout
// tracker.
package lockouts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ventas/internal/dbx"
	"github.com/dmitrijs2005/ventas/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanState(row *sql.Row) (models.LockoutState, error) {
	var (
		st   models.LockoutState
		last sql.NullTime
	)
	if err := row.Scan(&st.SalespersonID, &st.FailedAttempts, &st.IsBlocked, &last); err != nil {
		return models.LockoutState{}, err
	}
	if last.Valid {
		t := last.Time.UTC()
		st.LastFailureAt = &t
	}
	return st, nil
}

// Increment adds one failed attempt for seller in a single upsert and
// returns the resulting state. The row is created on the first failure.
func (r *PostgresRepository) Increment(ctx context.Context, seller string, threshold int, at time.Time) (models.LockoutState, error) {
	query :=
		`INSERT INTO seller_lockouts (salesperson_id, failed_attempts, is_blocked, last_failure_at)
		 VALUES ($1, 1, 1 >= $2, $3)
		 ON CONFLICT (salesperson_id) DO UPDATE
		 SET failed_attempts = seller_lockouts.failed_attempts + 1,
		     is_blocked = seller_lockouts.failed_attempts + 1 >= $2,
		     last_failure_at = $3
		 RETURNING salesperson_id, failed_attempts, is_blocked, last_failure_at
		 `

	st, err := scanState(r.db.QueryRowContext(ctx, query, seller, threshold, at))
	if err != nil {
		return models.LockoutState{}, fmt.Errorf("db error: %w", err)
	}
	return st, nil
}

// Reset zeroes the counter of a seller that is not blocked.
func (r *PostgresRepository) Reset(ctx context.Context, seller string) error {
	query :=
		`UPDATE seller_lockouts SET failed_attempts = 0
		 WHERE salesperson_id = $1 AND NOT is_blocked
		 `

	if _, err := r.db.ExecContext(ctx, query, seller); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Get returns the stored state, or a zero state when seller never failed.
func (r *PostgresRepository) Get(ctx context.Context, seller string) (models.LockoutState, error) {
	query :=
		`SELECT salesperson_id, failed_attempts, is_blocked, last_failure_at
		 FROM seller_lockouts
		 WHERE salesperson_id = $1
		 `

	st, err := scanState(r.db.QueryRowContext(ctx, query, seller))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LockoutState{SalespersonID: seller}, nil
		}
		return models.LockoutState{}, fmt.Errorf("db error: %w", err)
	}
	return st, nil
}

// Clear removes all lockout state for seller.
func (r *PostgresRepository) Clear(ctx context.Context, seller string) error {
	query := `DELETE FROM seller_lockouts WHERE salesperson_id = $1`

	if _, err := r.db.ExecContext(ctx, query, seller); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

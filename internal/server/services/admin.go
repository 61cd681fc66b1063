package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/ventas/internal/dbx"
	"github.com/dmitrijs2005/ventas/internal/server/lockout"
	"github.com/dmitrijs2005/ventas/internal/server/models"
	"github.com/dmitrijs2005/ventas/internal/server/repositories/repomanager"
)

// SellerStatus combines the tracker state with the administrative list.
type SellerStatus struct {
	Lockout     models.LockoutState `json:"lockout"`
	ListBlocked bool                `json:"listed_as_blocked"`
}

// AdminService backs the operator CLI.
type AdminService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	// store is nil when lockout state lives in Postgres, so that clearing
	// it joins the unblock transaction.
	store lockout.Store
}

func NewAdminService(db *sql.DB, m repomanager.RepositoryManager, store lockout.Store) *AdminService {
	return &AdminService{db: db, repomanager: m, store: store}
}

func (s *AdminService) lockouts(db dbx.DBTX) lockout.Store {
	if s.store != nil {
		return s.store
	}
	return s.repomanager.Lockouts(db)
}

func (s *AdminService) Status(ctx context.Context, seller string) (*SellerStatus, error) {
	st, err := s.lockouts(s.db).Get(ctx, seller)
	if err != nil {
		return nil, fmt.Errorf("lockout state: %w", err)
	}
	listed, err := s.repomanager.Reference(s.db).IsBlocked(ctx, seller)
	if err != nil {
		return nil, fmt.Errorf("blocked list: %w", err)
	}
	return &SellerStatus{Lockout: st, ListBlocked: listed}, nil
}

// Unblock clears the failure counter and removes seller from the
// administrative blocked list.
func (s *AdminService) Unblock(ctx context.Context, seller string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Reference(tx).Unblock(ctx, seller); err != nil {
			return fmt.Errorf("blocked list: %w", err)
		}
		if err := s.lockouts(tx).Clear(ctx, seller); err != nil {
			return fmt.Errorf("lockout state: %w", err)
		}
		return nil
	})
}

func (s *AdminService) Migrate(ctx context.Context) error {
	return s.repomanager.RunMigrations(ctx, s.db)
}

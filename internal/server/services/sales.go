package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ventas/internal/common"
	"github.com/dmitrijs2005/ventas/internal/logging"
	"github.com/dmitrijs2005/ventas/internal/server/lockout"
	"github.com/dmitrijs2005/ventas/internal/server/models"
	"github.com/dmitrijs2005/ventas/internal/server/notify"
	"github.com/dmitrijs2005/ventas/internal/server/photos"
	"github.com/dmitrijs2005/ventas/internal/server/repositories/repomanager"
)

type Validator interface {
	Validate(ctx context.Context, seller, serial string) models.Verdict
}

type LockoutTracker interface {
	RecordFailure(ctx context.Context, seller string) (lockout.Outcome, error)
	Reset(ctx context.Context, seller string) error
}

type PhotoStore interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (photos.Stored, error)
}

// Alerter queues lockout notifications without waiting for delivery.
type Alerter interface {
	Dispatch(e notify.LockoutEvent) bool
}

// Submission is a payload that already passed the required-field and
// photo checks.
type Submission struct {
	SalespersonID    string
	SerialCode       string
	PhotoName        string
	PhotoContentType string
	Photo            []byte
}

type SaleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validator   Validator
	tracker     LockoutTracker
	photos      PhotoStore
	alerts      Alerter
	timeout     time.Duration
	logger      logging.Logger
	now         func() time.Time
}

func NewSaleService(db *sql.DB, m repomanager.RepositoryManager, v Validator, t LockoutTracker,
	p PhotoStore, a Alerter, timeout time.Duration, logger logging.Logger) *SaleService {
	return &SaleService{
		db:          db,
		repomanager: m,
		validator:   v,
		tracker:     t,
		photos:      p,
		alerts:      a,
		timeout:     timeout,
		logger:      logger.With("module", "sale_service"),
		now:         time.Now,
	}
}

func (s *SaleService) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

type run struct {
	s      *SaleService
	ctx    context.Context
	seller string
	state  State
}

func (r *run) to(next State) {
	if !CanTransition(r.state, next) {
		panic(fmt.Sprintf("invalid submission transition %s -> %s", r.state, next))
	}
	r.s.logger.Debug(r.ctx, "submission state", "vendedor", r.seller, "from", r.state, "to", next)
	r.state = next
}

// Submit drives a submission from validation to the stored sale.
//
// Errors: *RejectionError for business rejections, and errors wrapping
// common.ErrInternalValidation, common.ErrRequestAbandoned,
// common.ErrStorage or common.ErrPersistence for everything else.
func (s *SaleService) Submit(ctx context.Context, sub Submission) (*models.Sale, State, error) {
	r := &run{s: s, ctx: ctx, seller: sub.SalespersonID, state: StateReceived}
	r.to(StateValidating)

	verdict := s.validator.Validate(ctx, sub.SalespersonID, sub.SerialCode)

	switch {
	case verdict.Kind == models.VerdictInternalError:
		r.to(StateFailed)
		return nil, r.state, verdict.Err

	case verdict.Blocked():
		r.to(StateBlockedShortCircuit)
		return nil, r.state, blockedRejection()

	case verdict.Kind == models.VerdictRejected:
		r.to(StateRejected)
		return nil, r.state, s.reject(ctx, sub.SalespersonID, verdict.Reason)
	}

	r.to(StateValidated)

	resetCtx, cancel := s.bounded(ctx)
	err := s.tracker.Reset(resetCtx, sub.SalespersonID)
	cancel()
	if err != nil && ctx.Err() == nil {
		r.to(StateFailed)
		return nil, r.state, fmt.Errorf("%w: %w", common.ErrInternalValidation, err)
	}

	if err := ctx.Err(); err != nil {
		s.logger.Warn(ctx, "client went away, sale not stored", "vendedor", sub.SalespersonID)
		r.to(StateFailed)
		return nil, r.state, fmt.Errorf("%w: %w", common.ErrRequestAbandoned, err)
	}

	r.to(StateStoringPhoto)
	stored, err := s.photos.Upload(ctx, sub.PhotoName, sub.PhotoContentType, sub.Photo)
	if err != nil {
		r.to(StateFailed)
		if !errors.Is(err, common.ErrStorage) {
			err = fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		return nil, r.state, err
	}

	r.to(StatePersisting)
	insertCtx, cancel := s.bounded(ctx)
	defer cancel()
	sale, err := s.repomanager.Sales(s.db).Create(insertCtx, &models.Sale{
		SalespersonID: sub.SalespersonID,
		SerialCode:    sub.SerialCode,
		PhotoKey:      stored.Key,
		PhotoURL:      stored.URL,
		SubmittedAt:   s.now().UTC(),
	})
	if err != nil {
		// the stored photo stays behind; nothing references it
		s.logger.Error(ctx, "sale insert failed after upload", "vendedor", sub.SalespersonID, "photo_key", stored.Key, "error", err)
		r.to(StateFailed)
		return nil, r.state, fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}

	r.to(StateCompleted)
	s.logger.Info(ctx, "sale registered", "vendedor", sale.SalespersonID, "serie", sale.SerialCode, "id", sale.ID)
	return sale, r.state, nil
}

func (s *SaleService) reject(ctx context.Context, seller, reason string) error {
	recCtx, cancel := s.bounded(ctx)
	defer cancel()

	out, err := s.tracker.RecordFailure(recCtx, seller)
	if err != nil {
		s.logger.Error(ctx, "failed to record rejected attempt", "vendedor", seller, "error", err)
		return fmt.Errorf("%w: %w", common.ErrInternalValidation, err)
	}

	if out.NewlyBlocked {
		at := s.now().UTC()
		if out.State.LastFailureAt != nil {
			at = *out.State.LastFailureAt
		}
		s.alerts.Dispatch(notify.LockoutEvent{
			SalespersonID: seller,
			Attempts:      out.State.FailedAttempts,
			BlockedAt:     at,
		})
	}

	return &RejectionError{
		Reason:      reason,
		Attempts:    out.State.FailedAttempts,
		MaxAttempts: lockout.MaxFailedAttempts,
		Blocked:     out.State.IsBlocked,
	}
}

// List returns every recorded sale, newest first.
func (s *SaleService) List(ctx context.Context) ([]*models.Sale, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	sales, err := s.repomanager.Sales(s.db).ListNewestFirst(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	return sales, nil
}

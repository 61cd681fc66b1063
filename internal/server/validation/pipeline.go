// Package validation decides whether a submission may proceed. Checks run
// in a fixed order and stop at the first failure.
package validation

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ventas/internal/common"
	"github.com/dmitrijs2005/ventas/internal/logging"
	"github.com/dmitrijs2005/ventas/internal/server/models"
	"github.com/dmitrijs2005/ventas/internal/server/retryx"
)

// LockoutReader reports whether the tracker has blocked a salesperson.
type LockoutReader interface {
	IsBlocked(ctx context.Context, seller string) (bool, error)
}

// ReferenceData answers the reference-table lookups.
type ReferenceData interface {
	IsBlocked(ctx context.Context, seller string) (bool, error)
	IsRegistered(ctx context.Context, seller string) (bool, error)
	IsValidSerial(ctx context.Context, serial string) (bool, error)
}

type Pipeline struct {
	lockouts  LockoutReader
	reference ReferenceData
	policy    retryx.Policy
	logger    logging.Logger
}

func NewPipeline(lockouts LockoutReader, reference ReferenceData, policy retryx.Policy, logger logging.Logger) *Pipeline {
	return &Pipeline{
		lockouts:  lockouts,
		reference: reference,
		policy:    policy,
		logger:    logger.With("module", "validation"),
	}
}

type check struct {
	name   string
	lookup func(ctx context.Context) (bool, error)
	// pass is the lookup result that lets the submission continue.
	pass   bool
	reason string
}

// Validate runs the checks: tracker lockout, administrative blocked list,
// registered salesperson, valid serial. A lookup that fails (after retries
// or on timeout) yields an InternalError verdict.
func (p *Pipeline) Validate(ctx context.Context, seller, serial string) models.Verdict {
	checks := []check{
		{name: "lockout", lookup: func(ctx context.Context) (bool, error) { return p.lockouts.IsBlocked(ctx, seller) }, pass: false, reason: models.ReasonSellerBlocked},
		{name: "blocked_list", lookup: func(ctx context.Context) (bool, error) { return p.reference.IsBlocked(ctx, seller) }, pass: false, reason: models.ReasonSellerBlocked},
		{name: "registered", lookup: func(ctx context.Context) (bool, error) { return p.reference.IsRegistered(ctx, seller) }, pass: true, reason: models.ReasonSellerNotRegistered},
		{name: "serial", lookup: func(ctx context.Context) (bool, error) { return p.reference.IsValidSerial(ctx, serial) }, pass: true, reason: models.ReasonSerialInvalid},
	}

	for _, c := range checks {
		got, err := retryx.Value(ctx, p.policy, c.lookup)
		if err != nil {
			p.logger.Error(ctx, "lookup failed", "check", c.name, "vendedor", seller, "error", err)
			return models.InternalError(fmt.Errorf("%w: %s: %w", common.ErrInternalValidation, c.name, err))
		}
		if got != c.pass {
			p.logger.Info(ctx, "submission rejected", "check", c.name, "vendedor", seller, "reason", c.reason)
			return models.Rejected(c.reason)
		}
	}

	return models.Valid()
}

// Package lockout tracks failed submission attempts per salesperson and
// blocks a salesperson once MaxFailedAttempts is reached. Counters live in a
// Store so every instance of the service sees the same state.
package lockout

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ventas/internal/server/models"
)

// MaxFailedAttempts is the number of failed attempts that blocks a salesperson.
const MaxFailedAttempts = 3

// Store persists lockout state. Increment must be atomic: concurrent calls
// for the same salesperson each observe a distinct count.
type Store interface {
	Increment(ctx context.Context, seller string, threshold int, at time.Time) (models.LockoutState, error)
	// Reset zeroes the counter unless the salesperson is blocked.
	Reset(ctx context.Context, seller string) error
	// Get returns the zero state for an unknown salesperson.
	Get(ctx context.Context, seller string) (models.LockoutState, error)
	// Clear drops the state entirely, unblocking the salesperson.
	Clear(ctx context.Context, seller string) error
}

// Outcome is the result of recording a failure.
type Outcome struct {
	State models.LockoutState
	// NewlyBlocked is true only for the failure that reached the threshold.
	NewlyBlocked bool
}

type Tracker struct {
	store Store
	now   func() time.Time
}

func NewTracker(store Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// RecordFailure counts one failed attempt for seller.
func (t *Tracker) RecordFailure(ctx context.Context, seller string) (Outcome, error) {
	st, err := t.store.Increment(ctx, seller, MaxFailedAttempts, t.now().UTC())
	if err != nil {
		return Outcome{}, fmt.Errorf("record failure: %w", err)
	}
	return Outcome{State: st, NewlyBlocked: st.FailedAttempts == MaxFailedAttempts}, nil
}

// Reset clears the failure count after a successful validation.
// A blocked salesperson stays blocked.
func (t *Tracker) Reset(ctx context.Context, seller string) error {
	if err := t.store.Reset(ctx, seller); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// IsBlocked reports whether seller has reached the failure threshold.
func (t *Tracker) IsBlocked(ctx context.Context, seller string) (bool, error) {
	st, err := t.store.Get(ctx, seller)
	if err != nil {
		return false, err
	}
	return st.IsBlocked, nil
}

// State returns the stored lockout state, zero-valued for unknown sellers.
func (t *Tracker) State(ctx context.Context, seller string) (models.LockoutState, error) {
	return t.store.Get(ctx, seller)
}

// Unblock is the administrative escape hatch; the HTTP surface never calls it.
func (t *Tracker) Unblock(ctx context.Context, seller string) error {
	return t.store.Clear(ctx, seller)
}

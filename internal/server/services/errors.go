package services

import (
	"fmt"

	"github.com/dmitrijs2005/ventas/internal/common"
	"github.com/dmitrijs2005/ventas/internal/server/lockout"
	"github.com/dmitrijs2005/ventas/internal/server/models"
)

// RejectionError reports a submission refused for a business reason.
// Attempts is the failure count after this submission; it is zero when the
// salesperson was already blocked and nothing was counted.
type RejectionError struct {
	Reason      string
	Attempts    int
	MaxAttempts int
	Blocked     bool
}

func (e *RejectionError) Error() string {
	if e.Attempts == 0 {
		return fmt.Sprintf("submission rejected: %s", e.Reason)
	}
	return fmt.Sprintf("submission rejected: %s (attempt %d/%d)", e.Reason, e.Attempts, e.MaxAttempts)
}

// Unwrap lets errors.Is(err, common.ErrSellerBlocked) match blocked rejections.
func (e *RejectionError) Unwrap() error {
	if e.Blocked {
		return common.ErrSellerBlocked
	}
	return nil
}

func blockedRejection() *RejectionError {
	return &RejectionError{Reason: models.ReasonSellerBlocked, MaxAttempts: lockout.MaxFailedAttempts, Blocked: true}
}

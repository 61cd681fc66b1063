package models

import "time"

// LockoutState is the failed-attempt bookkeeping for one salesperson.
// A salesperson with no stored state is equivalent to the zero value.
type LockoutState struct {
	SalespersonID  string     `json:"vendedor"`
	FailedAttempts int        `json:"failed_attempts"`
	IsBlocked      bool       `json:"is_blocked"`
	LastFailureAt  *time.Time `json:"last_failure_at,omitempty"`
}

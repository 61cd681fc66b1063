// Package notify delivers out-of-band alerts when a salesperson becomes
// blocked. Delivery is best-effort: failures are logged and never reach
// the submitter.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ventas/internal/logging"
)

// LockoutEvent announces that a salesperson reached the failure threshold.
type LockoutEvent struct {
	SalespersonID string    `json:"vendedor"`
	Attempts      int       `json:"attempts"`
	BlockedAt     time.Time `json:"blocked_at"`
}

func (e LockoutEvent) message() string {
	return fmt.Sprintf("El vendedor %s fue bloqueado tras %d intentos fallidos (%s).",
		e.SalespersonID, e.Attempts, e.BlockedAt.UTC().Format(time.RFC3339))
}

type Notifier interface {
	Notify(ctx context.Context, event LockoutEvent) error
}

// LogNotifier only writes the event to the log. It is the sink of last
// resort when neither e-mail nor a broker is configured.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("module", "notify", "sink", "log")}
}

func (n *LogNotifier) Notify(ctx context.Context, e LockoutEvent) error {
	n.logger.Warn(ctx, "seller blocked", "vendedor", e.SalespersonID, "attempts", e.Attempts, "blocked_at", e.BlockedAt)
	return nil
}

// Fanout delivers every event to all sinks and joins their errors.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, e LockoutEvent) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

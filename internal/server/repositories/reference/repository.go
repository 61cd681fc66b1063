// Package reference reads the reference tables that decide whether a
// submission is acceptable: blocked sellers, registered sellers and valid
// serial codes.
package reference

import "context"

// Repository answers membership questions against the reference tables.
// A lookup failure is returned as an error; "not present" is (false, nil).
type Repository interface {
	IsBlocked(ctx context.Context, seller string) (bool, error)
	IsRegistered(ctx context.Context, seller string) (bool, error)
	IsValidSerial(ctx context.Context, serial string) (bool, error)
	// Unblock removes seller from the administrative blocked list.
	Unblock(ctx context.Context, seller string) error
}

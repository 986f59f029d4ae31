// Package users tracks everyone who ever started the bot: the broadcast
// audience, the warning counters, and block state.
package users

import (
	"context"
	"errors"
	"time"
)

// MaxWarnings is the number of warnings that triggers an automatic
// temporary block.
const MaxWarnings = 5

// AutoBlockFor is how long an automatic block lasts. It expires lazily: the
// next interaction after the deadline clears it.
const AutoBlockFor = 24 * time.Hour

var ErrNotFound = errors.New("users: not found")

// User is one registered chat member.
type User struct {
	ID        int64     `db:"id"`
	Username  string    `db:"username"`
	FirstName string    `db:"first_name"`
	Warnings  int       `db:"warnings"`
	Blocked   bool      `db:"blocked"`       // manual admin block, no expiry
	BlockedTo time.Time `db:"blocked_until"` // automatic block deadline, zero when none
	JoinedAt  time.Time `db:"joined_at"`
}

// BlockedAt reports whether the user is blocked at the given instant.
func (u User) BlockedAt(now time.Time) bool {
	return u.Blocked || (!u.BlockedTo.IsZero() && now.Before(u.BlockedTo))
}

// Registry persists users. Implementations must be safe for concurrent use.
type Registry interface {
	// Ensure inserts the user or refreshes the mutable profile fields.
	// Warnings and block state survive re-registration.
	Ensure(ctx context.Context, u User) error
	Get(ctx context.Context, id int64) (User, error)
	List(ctx context.Context) ([]User, error)
	// Remove forgets a user entirely, e.g. after a permanent delivery
	// failure during a broadcast.
	Remove(ctx context.Context, id int64) error
	// Warn increments the warning counter. Reaching MaxWarnings resets the
	// counter and starts an automatic block of AutoBlockFor.
	Warn(ctx context.Context, id int64, now time.Time) (User, error)
	// SetBlocked flips the manual block flag and clears any automatic
	// block either way.
	SetBlocked(ctx context.Context, id int64, blocked bool) error
}

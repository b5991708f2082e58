package store

import (
	"context"
	"time"
)

// LoginCodeStore persists outstanding one-time login codes keyed by phone
// number. Implementations must store only a digest of the code and must make
// Consume atomic so that a code can be redeemed at most once.
//
// Failed attempts are counted per phone number, independently of the code,
// so issuing a new code does not grant a fresh set of guesses.
type LoginCodeStore interface {
	// Save replaces any outstanding code for phoneNumber with digest.
	// The code expires after ttl. The failure counter is left untouched.
	Save(ctx context.Context, phoneNumber, digest string, ttl time.Duration) error

	// Get returns the digest of the outstanding code.
	// Returns ErrLoginCodeNotFound if none exists or it expired.
	Get(ctx context.Context, phoneNumber string) (string, error)

	// Consume deletes the outstanding code and reports whether this call was
	// the one that removed it.
	Consume(ctx context.Context, phoneNumber string) (bool, error)

	// RecordFailure increments and returns the failure counter. The counter
	// expires window after the first failure it records.
	RecordFailure(ctx context.Context, phoneNumber string, window time.Duration) (int, error)

	// Failures returns the current failure counter, zero when none is recorded.
	Failures(ctx context.Context, phoneNumber string) (int, error)

	// ClearFailures resets the failure counter.
	ClearFailures(ctx context.Context, phoneNumber string) error
}

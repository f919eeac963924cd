// Package source fetches batches of freshly generated users from a remote service.
//
// A Source is stateless: every FetchBatch call is an independent request with
// no retries and no caching. Two calls may return users whose uids collide.
// Failures are reported as *errors.NetworkError (connectivity, timeout,
// non-2xx status) or *errors.ParseError (a body that is not users).
package source

import (
	"context"

	"github.com/Iron-Ham/roster/internal/errors"
	"github.com/Iron-Ham/roster/internal/user"
)

// Source produces batches of users.
type Source interface {
	// FetchBatch returns count freshly generated users in source order.
	// count must be at least 1.
	FetchBatch(ctx context.Context, count int) (user.List, error)
}

// Func adapts an ordinary function to the Source interface.
type Func func(ctx context.Context, count int) (user.List, error)

// FetchBatch calls f.
func (f Func) FetchBatch(ctx context.Context, count int) (user.List, error) {
	return f(ctx, count)
}

// ValidateCount returns a ValidationError when count is below one.
func ValidateCount(count int) error {
	if count < 1 {
		return errors.NewValidationError("batch count out of range").
			WithField("count").
			WithValue(count).
			WithCause(errors.ErrInvalidCount)
	}
	return nil
}

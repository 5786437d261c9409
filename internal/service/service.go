package service

import (
	"errors"
	"fmt"

	"github.com/stemsi/qprep-client/internal/apiclient"
)

// Errors surfaced to the front end.
var (
	ErrNotLoggedIn       = errors.New("not logged in")
	ErrUpgradeRequired   = errors.New("this content needs an active subscription")
	ErrUsageLimitReached = errors.New("daily custom paper limit reached")
	ErrNotFound          = errors.New("not found")
)

// classify maps well-known API statuses onto service errors; anything else is
// wrapped with op.
func classify(op string, err error) error {
	switch {
	case apiclient.IsForbidden(err):
		return fmt.Errorf("%s: %w", op, ErrUpgradeRequired)
	case apiclient.IsNotFound(err):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case apiclient.IsUnauthorized(err):
		return fmt.Errorf("%s: %w", op, ErrNotLoggedIn)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

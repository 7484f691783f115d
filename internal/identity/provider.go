package identity

import (
	"context"
	"errors"
)

// ErrNoCachedToken is returned by a non-interactive Token call when the
// provider holds nothing usable.
var ErrNoCachedToken = errors.New("no cached provider token")

// Provider is the identity provider collaborator. Token with interactive set
// may show consent UI and block until the user finishes or cancels it.
type Provider interface {
	Token(ctx context.Context, interactive bool) (string, error)
	RemoveCached(ctx context.Context, token string) error
	ClearCache(ctx context.Context) error
	Revoke(ctx context.Context, token string) error
}

// Package identity turns an identity provider credential into a backend
// session and keeps the session store in step with the provider.
package identity

import (
	"context"
	"errors"
	"strings"
	"sync"

	"url-chatroom/internal/chaterr"
	"url-chatroom/internal/dto"
	"url-chatroom/internal/pkg/logger"
	"url-chatroom/internal/pkg/validation"
	"url-chatroom/internal/session"
)

type State int

const (
	SignedOut State = iota
	Authenticating
	SignedIn
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case SignedIn:
		return "signed_in"
	default:
		return "signed_out"
	}
}

var ErrSignInInProgress = errors.New("sign-in already in progress")

const (
	defaultVerifyDetail   = "Google verification failed"
	defaultNicknameDetail = "Failed to update nickname"
)

// Backend is the subset of the REST client the bridge needs.
type Backend interface {
	VerifyGoogle(ctx context.Context, accessToken string) (*dto.SessionResponse, error)
	Me(ctx context.Context) (*dto.User, error)
	UpdateMe(ctx context.Context, displayName string) (*dto.User, error)
}

type nicknameInput struct {
	DisplayName string `json:"display_name" label:"Nickname" validate:"required,min=2,max=64"`
}

type Bridge struct {
	provider Provider
	backend  Backend
	sessions *session.Store
	logger   logger.ILogger

	mu    sync.Mutex
	state State
}

func NewBridge(provider Provider, backend Backend, sessions *session.Store, log logger.ILogger) *Bridge {
	return &Bridge{
		provider: provider,
		backend:  backend,
		sessions: sessions,
		logger:   log,
	}
}

func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Bridge) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

// SignIn obtains a fresh provider token, exchanges it for a backend session
// and replaces the stored session with the result. On failure the store is
// left exactly as it was.
func (b *Bridge) SignIn(ctx context.Context) (*dto.User, error) {
	b.mu.Lock()
	if b.state == Authenticating {
		b.mu.Unlock()
		return nil, ErrSignInInProgress
	}
	b.state = Authenticating
	b.mu.Unlock()

	user, err := b.signIn(ctx)
	if err != nil {
		b.logger.Warn("Identity", "Sign-in failed", map[string]interface{}{"error": err.Error()})
		b.settle()
		return nil, err
	}

	b.setState(SignedIn)
	b.logger.Info("Identity", "Signed in", map[string]interface{}{"user_id": user.Id})
	return user, nil
}

func (b *Bridge) signIn(ctx context.Context) (*dto.User, error) {
	// A stale cached token would skip the consent screen and may already be revoked.
	b.bestEffort("clear provider cache", func() error { return b.provider.ClearCache(ctx) })

	credential, err := b.provider.Token(ctx, true)
	if err != nil {
		return nil, &chaterr.IdentityError{Cause: err}
	}
	if credential == "" {
		return nil, &chaterr.IdentityError{}
	}

	resp, err := b.backend.VerifyGoogle(ctx, credential)
	if err != nil {
		return nil, withDefaultDetail(err, defaultVerifyDetail)
	}

	user := resp.User
	if err := b.sessions.Replace(ctx, resp.AccessToken, credential, &user); err != nil {
		return nil, err
	}
	return b.sessions.User(), nil
}

// SignOut clears local state first, then tells the provider to forget and
// revoke the credential. Provider failures are logged and dropped.
func (b *Bridge) SignOut(ctx context.Context) error {
	credential := b.sessions.ExternalCredential()

	err := b.sessions.Clear(ctx)
	b.setState(SignedOut)

	if credential != "" {
		b.bestEffort("remove cached token", func() error { return b.provider.RemoveCached(ctx, credential) })
	}
	b.bestEffort("clear provider cache", func() error { return b.provider.ClearCache(ctx) })
	if credential != "" {
		b.bestEffort("revoke token", func() error { return b.provider.Revoke(ctx, credential) })
	}

	if err != nil {
		return err
	}
	b.logger.Info("Identity", "Signed out", nil)
	return nil
}

// FetchProfile asks the backend who the stored token belongs to. It returns
// nil without a network call when there is no token, and ErrSessionInvalid
// when the backend rejects the token.
func (b *Bridge) FetchProfile(ctx context.Context) (*dto.User, error) {
	token := b.sessions.Token()
	if token == "" {
		b.setState(SignedOut)
		return nil, nil
	}

	user, err := b.backend.Me(ctx)
	if err != nil {
		var verr *chaterr.VerificationError
		if errors.As(err, &verr) {
			b.logger.Info("Identity", "Stored session rejected", map[string]interface{}{"status": verr.Status})
			if b.sessions.Token() == token {
				b.sessions.SetUser(nil)
				b.setState(SignedOut)
			}
			return nil, chaterr.ErrSessionInvalid
		}
		return nil, err
	}

	// A sign-in or sign-out finished while the request was in flight.
	if b.sessions.Token() != token {
		return b.sessions.User(), nil
	}

	b.sessions.SetUser(user)
	b.setState(SignedIn)
	return b.sessions.User(), nil
}

// UpdateDisplayName trims and validates name before sending it. Invalid
// names never reach the network.
func (b *Bridge) UpdateDisplayName(ctx context.Context, name string) (*dto.User, error) {
	name = strings.TrimSpace(name)
	if err := validation.Struct(nicknameInput{DisplayName: name}); err != nil {
		return nil, err
	}
	if b.sessions.Token() == "" {
		return nil, chaterr.ErrNotSignedIn
	}

	user, err := b.backend.UpdateMe(ctx, name)
	if err != nil {
		return nil, withDefaultDetail(err, defaultNicknameDetail)
	}

	b.sessions.UpdateDisplayName(user.DisplayName)
	return b.sessions.User(), nil
}

// settle derives the state from the store after a failed transition.
func (b *Bridge) settle() {
	if b.sessions.User() != nil {
		b.setState(SignedIn)
		return
	}
	b.setState(SignedOut)
}

func (b *Bridge) bestEffort(op string, fn func() error) {
	if err := fn(); err != nil {
		b.logger.Warn("Identity", "Provider cleanup failed", map[string]interface{}{"op": op, "error": err.Error()})
	}
}

func withDefaultDetail(err error, detail string) error {
	var verr *chaterr.VerificationError
	if errors.As(err, &verr) && verr.Detail == "" {
		return &chaterr.VerificationError{Status: verr.Status, Detail: detail}
	}
	return err
}

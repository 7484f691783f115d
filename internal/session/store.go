// Package session holds the client's authenticated state: the backend
// session token, the identity provider credential it was issued for, the
// device's stable client identifier and the verified user profile.
package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"url-chatroom/internal/dto"
	"url-chatroom/internal/pkg/logger"
	"url-chatroom/internal/storage"

	"github.com/google/uuid"
)

const (
	KeyAuthToken         = "urlchatroom_auth_token"
	KeyGoogleAccessToken = "urlchatroom_google_access_token"
	KeyClientID          = "urlchatroom_client_id"
)

type Session struct {
	Token              string
	ExternalCredential string
	ClientID           string
	User               *dto.User
}

// Authenticated reports whether the backend accepted Token on the most
// recent check.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

type Store struct {
	kv     storage.Store
	logger logger.ILogger
	newID  func() (string, error)

	mu      sync.RWMutex
	current Session
}

func NewStore(kv storage.Store, log logger.ILogger) *Store {
	return &Store{
		kv:     kv,
		logger: log,
		newID:  newClientID,
	}
}

func newClientID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Load reads the persisted session. A client identifier is generated and
// persisted the first time; it is never regenerated afterwards.
func (s *Store) Load(ctx context.Context) (Session, error) {
	values, err := s.kv.Get(ctx, KeyAuthToken, KeyGoogleAccessToken, KeyClientID)
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}

	clientID := values[KeyClientID]
	if clientID == "" {
		clientID, err = s.newID()
		if err != nil {
			return Session{}, fmt.Errorf("generate client id: %w", err)
		}
		if err := s.kv.Set(ctx, map[string]string{KeyClientID: clientID}); err != nil {
			return Session{}, fmt.Errorf("persist client id: %w", err)
		}
		s.logger.Info("Session", "Generated client identifier", map[string]interface{}{"client_id": clientID})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	token := values[KeyAuthToken]
	var user *dto.User
	if token != "" && token == s.current.Token {
		user = s.current.User
	}
	s.current = Session{
		Token:              token,
		ExternalCredential: values[KeyGoogleAccessToken],
		ClientID:           clientID,
		User:               user,
	}
	return s.snapshotLocked(), nil
}

// Save persists token and credential in one write. The verified profile is
// dropped until the caller sets it again.
func (s *Store) Save(ctx context.Context, token, externalCredential string) error {
	return s.replace(ctx, token, externalCredential, nil)
}

// Replace swaps the whole authenticated state at once, as a sign-in does.
func (s *Store) Replace(ctx context.Context, token, externalCredential string, user *dto.User) error {
	return s.replace(ctx, token, externalCredential, user)
}

// Clear resets token and credential. The client identifier survives.
func (s *Store) Clear(ctx context.Context) error {
	return s.replace(ctx, "", "", nil)
}

func (s *Store) replace(ctx context.Context, token, externalCredential string, user *dto.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.kv.Set(ctx, map[string]string{
		KeyAuthToken:         token,
		KeyGoogleAccessToken: externalCredential,
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.current.Token = token
	s.current.ExternalCredential = externalCredential
	s.current.User = copyUser(user)
	return nil
}

// AuthHeader returns the bearer header for backend calls, or nil when there
// is no token.
func (s *Store) AuthHeader() http.Header {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current.Token == "" {
		return nil
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer "+s.current.Token)
	return h
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

func (s *Store) ExternalCredential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.ExternalCredential
}

func (s *Store) ClientID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.ClientID
}

// User returns a copy of the verified profile, or nil when signed out.
func (s *Store) User() *dto.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.current.User)
}

// SetUser records the result of a profile check. A profile without a token
// is ignored.
func (s *Store) SetUser(user *dto.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.Token == "" {
		s.current.User = nil
		return
	}
	s.current.User = copyUser(user)
}

// UpdateDisplayName is the only in-place mutation of the profile.
func (s *Store) UpdateDisplayName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.User != nil {
		s.current.User.DisplayName = name
	}
}

func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Session {
	out := s.current
	out.User = copyUser(s.current.User)
	return out
}

func copyUser(u *dto.User) *dto.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

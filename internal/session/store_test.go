package session

import (
	"context"
	"errors"
	"testing"

	"url-chatroom/internal/dto"
	"url-chatroom/internal/pkg/logger"
	"url-chatroom/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingKV struct {
	storage.Store
	failSet bool
}

func (f *failingKV) Set(ctx context.Context, values map[string]string) error {
	if f.failSet {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, values)
}

func TestLoadGeneratesClientIDOnce(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()

	first, err := NewStore(kv, logger.NewNop()).Load(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first.ClientID)
	assert.Len(t, first.ClientID, 36)

	second, err := NewStore(kv, logger.NewNop()).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ClientID, second.ClientID)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	s := NewStore(kv, logger.NewNop())
	_, err := s.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "backend-token", "ya29.provider"))

	loaded, err := NewStore(kv, logger.NewNop()).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "backend-token", loaded.Token)
	assert.Equal(t, "ya29.provider", loaded.ExternalCredential)
	assert.Nil(t, loaded.User)
	assert.False(t, loaded.Authenticated())
}

func TestClearKeepsClientID(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	s := NewStore(kv, logger.NewNop())
	sess, err := s.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Replace(ctx, "tok", "cred", &dto.User{Id: 1, DisplayName: "Ana"}))
	assert.True(t, s.Snapshot().Authenticated())

	require.NoError(t, s.Clear(ctx))
	assert.Empty(t, s.Token())
	assert.Empty(t, s.ExternalCredential())
	assert.Nil(t, s.User())
	assert.Equal(t, sess.ClientID, s.ClientID())

	values, err := kv.Get(ctx, KeyAuthToken, KeyGoogleAccessToken, KeyClientID)
	require.NoError(t, err)
	assert.Equal(t, "", values[KeyAuthToken])
	assert.Equal(t, "", values[KeyGoogleAccessToken])
	assert.Equal(t, sess.ClientID, values[KeyClientID])
}

func TestAuthHeader(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemoryStore(), logger.NewNop())
	_, err := s.Load(ctx)
	require.NoError(t, err)

	assert.Nil(t, s.AuthHeader())

	require.NoError(t, s.Save(ctx, "abc", "cred"))
	assert.Equal(t, "Bearer abc", s.AuthHeader().Get("Authorization"))
}

func TestFailedWriteLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{Store: storage.NewMemoryStore()}
	s := NewStore(kv, logger.NewNop())
	_, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Replace(ctx, "old", "old-cred", &dto.User{DisplayName: "Ana"}))

	kv.failSet = true
	assert.Error(t, s.Replace(ctx, "new", "new-cred", &dto.User{DisplayName: "Bob"}))

	snap := s.Snapshot()
	assert.Equal(t, "old", snap.Token)
	assert.Equal(t, "old-cred", snap.ExternalCredential)
	require.NotNil(t, snap.User)
	assert.Equal(t, "Ana", snap.User.DisplayName)
}

func TestUserIsCopied(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemoryStore(), logger.NewNop())
	_, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "tok", ""))

	u := &dto.User{DisplayName: "Ana"}
	s.SetUser(u)
	u.DisplayName = "mutated"
	assert.Equal(t, "Ana", s.User().DisplayName)

	s.UpdateDisplayName("Ana Maria")
	assert.Equal(t, "Ana Maria", s.User().DisplayName)
}

func TestSetUserWithoutTokenIsIgnored(t *testing.T) {
	s := NewStore(storage.NewMemoryStore(), logger.NewNop())
	s.SetUser(&dto.User{DisplayName: "Ana"})
	assert.Nil(t, s.User())
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemoryStore(), logger.NewNop())

	prefs, err := s.LoadPreferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultPreferences(), prefs)

	require.NoError(t, s.SavePreferences(ctx, Preferences{NotifyMessages: true, NotifyMentions: false}))
	prefs, err = s.LoadPreferences(ctx)
	require.NoError(t, err)
	assert.True(t, prefs.NotifyMessages)
	assert.False(t, prefs.NotifyMentions)
}

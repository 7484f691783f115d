package identity

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"url-chatroom/internal/config"
	"url-chatroom/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestGoogleProviderBrowserFlow(t *testing.T) {
	challenges := make(chan string, 1)
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "auth-code", r.PostForm.Get("code"))
		verifier := r.PostForm.Get("code_verifier")
		require.NotEmpty(t, verifier)
		assert.Equal(t, <-challenges, oauth2.S256ChallengeFromVerifier(verifier))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"ya29.fresh","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	p := NewGoogleProvider(config.GoogleConfig{
		ClientID:        "client-id",
		Scopes:          []string{"openid"},
		CallbackTimeout: 5 * time.Second,
	}, logger.NewNop())
	p.endpoint = oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: tokenSrv.URL}
	p.out = io.Discard
	p.openURL = func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		q := u.Query()
		assert.Equal(t, "S256", q.Get("code_challenge_method"))
		challenges <- q.Get("code_challenge")
		callback := q.Get("redirect_uri") + "?code=auth-code&state=" + url.QueryEscape(q.Get("state"))
		go http.Get(callback)
		return nil
	}

	tok, err := p.Token(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "ya29.fresh", tok)

	cached, err := p.Token(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "ya29.fresh", cached)

	require.NoError(t, p.RemoveCached(context.Background(), "ya29.fresh"))
	_, err = p.Token(context.Background(), false)
	assert.ErrorIs(t, err, ErrNoCachedToken)
}

func TestGoogleProviderStateMismatch(t *testing.T) {
	p := NewGoogleProvider(config.GoogleConfig{ClientID: "client-id", CallbackTimeout: 5 * time.Second}, logger.NewNop())
	p.out = io.Discard
	p.openURL = func(authURL string) error {
		u, _ := url.Parse(authURL)
		go http.Get(u.Query().Get("redirect_uri") + "?code=x&state=forged")
		return nil
	}

	_, err := p.Token(context.Background(), true)
	assert.EqualError(t, err, "state mismatch")
}

func TestGoogleProviderRevoke(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		got = r.URL.Query().Get("token")
	}))
	defer srv.Close()

	p := NewGoogleProvider(config.GoogleConfig{RevokeURL: srv.URL}, logger.NewNop())
	require.NoError(t, p.Revoke(context.Background(), "ya29.old"))
	assert.Equal(t, "ya29.old", got)
}

package service

import (
	"testing"
	"time"

	"url-chatroom/internal/entity"
	"url-chatroom/internal/pkg/serverutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService("secret", time.Hour)

	signed, expiresAt, err := tokens.Issue(&entity.User{Id: 7, Email: "a@example.com", DisplayName: "Ann"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	userID, err := tokens.ParseUserID(signed)
	require.NoError(t, err)
	assert.EqualValues(t, 7, userID)
}

func TestTokenRejections(t *testing.T) {
	issuer := NewTokenService("secret", time.Hour).(*tokenService)
	signed, _, err := issuer.Issue(&entity.User{Id: 1})
	require.NoError(t, err)

	expired := NewTokenService("secret", time.Hour).(*tokenService)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	tests := []struct {
		name   string
		parser ITokenService
		token  string
		detail string
	}{
		{name: "expired", parser: expired, token: signed, detail: "token expired"},
		{name: "wrong secret", parser: NewTokenService("other", time.Hour), token: signed, detail: "invalid token signature"},
		{name: "garbage", parser: issuer, token: "not-a-jwt", detail: "invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parser.ParseUserID(tt.token)
			var httpErr *serverutils.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, 401, httpErr.Status)
			assert.Equal(t, tt.detail, httpErr.Detail)
		})
	}
}

package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"url-chatroom/internal/dto"
	"url-chatroom/internal/entity"
	"url-chatroom/internal/pkg/logger"
	"url-chatroom/internal/pkg/serverutils"
	"url-chatroom/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	identity *GoogleIdentity
	err      error
}

func (f *fakeVerifier) Verify(context.Context, string) (*GoogleIdentity, error) {
	return f.identity, f.err
}

func newAuthFixture(identity *GoogleIdentity) (*authService, *fakeVerifier) {
	verifier := &fakeVerifier{identity: identity}
	svc := NewAuthService(memory.NewUserRepository(), verifier, NewTokenService("secret", time.Hour), logger.NewNop()).(*authService)
	return svc, verifier
}

const testGoogleToken = "ya29.test-access-token-value"

func TestVerifyGoogleCreatesUser(t *testing.T) {
	svc, _ := newAuthFixture(&GoogleIdentity{Sub: "sub-1", Email: "Ada@Example.com ", EmailVerified: true, Name: "Ada Lovelace"})

	res, err := svc.VerifyGoogle(context.Background(), &dto.GoogleVerifyRequest{AccessToken: testGoogleToken})
	require.NoError(t, err)

	assert.Equal(t, "bearer", res.TokenType)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.Equal(t, "Ada Lovelace", res.User.DisplayName)
	require.NotNil(t, res.User.LastLoginAt)

	userID, err := svc.tokens.ParseUserID(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.Id, userID)
}

func TestVerifyGoogleDisplayNameFallbacks(t *testing.T) {
	tests := []struct {
		name      string
		identity  GoogleIdentity
		requested string
		want      string
	}{
		{name: "requested name wins", identity: GoogleIdentity{Name: "Google Name"}, requested: "Chosen", want: "Chosen"},
		{name: "google name", identity: GoogleIdentity{Name: "Google Name"}, want: "Google Name"},
		{name: "email local part", identity: GoogleIdentity{}, want: "grace"},
		{name: "long google name is cut", identity: GoogleIdentity{Name: strings.Repeat("é", 80)}, want: strings.Repeat("é", 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := tt.identity
			identity.Sub, identity.Email, identity.EmailVerified = "sub", "grace@example.com", true
			svc, _ := newAuthFixture(&identity)

			res, err := svc.VerifyGoogle(context.Background(), &dto.GoogleVerifyRequest{AccessToken: testGoogleToken, DisplayName: tt.requested})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.User.DisplayName)
		})
	}
}

func TestVerifyGoogleLinksExistingEmail(t *testing.T) {
	svc, _ := newAuthFixture(&GoogleIdentity{Sub: "sub-9", Email: "linus@example.com", EmailVerified: true, Name: "Linus"})
	ctx := context.Background()

	existing := &entity.User{Email: "linus@example.com", DisplayName: "torvalds"}
	require.NoError(t, svc.users.Create(ctx, existing))

	res, err := svc.VerifyGoogle(ctx, &dto.GoogleVerifyRequest{AccessToken: testGoogleToken})
	require.NoError(t, err)
	assert.Equal(t, existing.Id, res.User.Id)
	assert.Equal(t, "torvalds", res.User.DisplayName)

	linked, err := svc.users.FindByGoogleSub(ctx, "sub-9")
	require.NoError(t, err)
	require.NotNil(t, linked)
	assert.Equal(t, existing.Id, linked.Id)
}

func TestVerifyGoogleReturningUserKeepsName(t *testing.T) {
	svc, verifier := newAuthFixture(&GoogleIdentity{Sub: "sub-2", Email: "kim@example.com", EmailVerified: true, Name: "Kim"})
	ctx := context.Background()

	first, err := svc.VerifyGoogle(ctx, &dto.GoogleVerifyRequest{AccessToken: testGoogleToken})
	require.NoError(t, err)

	_, err = svc.UpdateMe(ctx, first.User.Id, &dto.UpdateProfileRequest{DisplayName: "kimchi"})
	require.NoError(t, err)

	verifier.identity.Name = "Kim Renamed"
	second, err := svc.VerifyGoogle(ctx, &dto.GoogleVerifyRequest{AccessToken: testGoogleToken, DisplayName: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, first.User.Id, second.User.Id)
	assert.Equal(t, "kimchi", second.User.DisplayName)
}

func TestVerifyGooglePropagatesVerifierError(t *testing.T) {
	svc, verifier := newAuthFixture(nil)
	verifier.err = serverutils.Unauthorized("google token is invalid")

	_, err := svc.VerifyGoogle(context.Background(), &dto.GoogleVerifyRequest{AccessToken: testGoogleToken})
	var httpErr *serverutils.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 401, httpErr.Status)
	assert.Equal(t, "google token is invalid", httpErr.Detail)
}

func TestMeUnknownUser(t *testing.T) {
	svc, _ := newAuthFixture(nil)

	_, err := svc.Me(context.Background(), 404)
	var httpErr *serverutils.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "user not found", httpErr.Detail)
}

func TestUpdateMeTrimsDisplayName(t *testing.T) {
	svc, _ := newAuthFixture(&GoogleIdentity{Sub: "s", Email: "t@example.com", EmailVerified: true})
	ctx := context.Background()
	session, err := svc.VerifyGoogle(ctx, &dto.GoogleVerifyRequest{AccessToken: testGoogleToken})
	require.NoError(t, err)

	user, err := svc.UpdateMe(ctx, session.User.Id, &dto.UpdateProfileRequest{DisplayName: "  Tess  "})
	require.NoError(t, err)
	assert.Equal(t, "Tess", user.DisplayName)

	_, err = svc.UpdateMe(ctx, session.User.Id, &dto.UpdateProfileRequest{DisplayName: "   x   "})
	var httpErr *serverutils.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 422, httpErr.Status)
}

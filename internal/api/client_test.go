package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"url-chatroom/internal/chaterr"
	"url-chatroom/internal/dto"
	"url-chatroom/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAuth string

func (s staticAuth) AuthHeader() http.Header {
	if s == "" {
		return nil
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer "+string(s))
	return h
}

func TestListMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/messages", r.URL.Path)
		assert.Equal(t, "url:https://example.com/a?b=1", r.URL.Query().Get("thread_key"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Empty(t, r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode([]dto.Message{
			{Id: 1, ClientId: "Ana", Content: "first", CreatedAt: time.Unix(1, 0).UTC()},
			{Id: 2, ClientId: "Bob", Content: "second", CreatedAt: time.Unix(2, 0).UTC()},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", staticAuth(""), srv.Client(), logger.NewNop())
	msgs, err := c.ListMessages(context.Background(), "url:https://example.com/a?b=1", 100)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
}

func TestPostMessageSurfacesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body dto.CreateMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hi", body.Content)

		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"detail":"rate limit exceeded"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticAuth("tok"), srv.Client(), logger.NewNop())
	_, err := c.PostMessage(context.Background(), dto.CreateMessageRequest{ThreadKey: "url:https://example.com/", ClientId: "Ana", Content: "hi"})

	var verr *chaterr.VerificationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, http.StatusTooManyRequests, verr.Status)
	assert.Equal(t, "rate limit exceeded", verr.Detail)
}

func TestNonStringDetailIsDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":[{"loc":["body","display_name"],"msg":"too short"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, srv.Client(), logger.NewNop())
	_, err := c.UpdateMe(context.Background(), "ab")

	var verr *chaterr.VerificationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, verr.Detail)
	assert.Equal(t, "Failed to update nickname", chaterr.Message(err, "Failed to update nickname"))
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(srv.URL, nil, nil, logger.NewNop())
	_, err := c.Me(context.Background())

	var terr *chaterr.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "GET /api/auth/me", terr.Op)
}

func TestVerifyGoogle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/google/verify", r.URL.Path)
		var body dto.GoogleVerifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ya29.provider-token", body.AccessToken)

		json.NewEncoder(w).Encode(dto.SessionResponse{
			AccessToken: "backend-session",
			TokenType:   "bearer",
			User:        dto.User{Id: 7, Email: "ana@example.com", DisplayName: "Ana"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, srv.Client(), logger.NewNop())
	sess, err := c.VerifyGoogle(context.Background(), "ya29.provider-token")
	require.NoError(t, err)
	assert.Equal(t, "backend-session", sess.AccessToken)
	assert.Equal(t, "Ana", sess.User.DisplayName)
}

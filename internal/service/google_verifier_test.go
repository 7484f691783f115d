package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"url-chatroom/internal/pkg/serverutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type googleStub struct {
	userInfo map[string]interface{}
	aud      string
	status   int
	auth     string
}

func (g *googleStub) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		g.auth = r.Header.Get("Authorization")
		if g.status != 0 {
			w.WriteHeader(g.status)
			return
		}
		json.NewEncoder(w).Encode(g.userInfo)
	})
	mux.HandleFunc("/tokeninfo", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"aud": g.aud})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func verifiedInfo() map[string]interface{} {
	return map[string]interface{}{"sub": "123", "email": "a@example.com", "email_verified": true, "name": "A"}
}

func TestGoogleVerifierAcceptsValidToken(t *testing.T) {
	stub := &googleStub{userInfo: verifiedInfo(), aud: "client-1"}
	srv := stub.server(t)
	v := NewGoogleVerifier(srv.URL+"/userinfo", srv.URL+"/tokeninfo", "client-1", srv.Client())

	info, err := v.Verify(context.Background(), "token-abc")
	require.NoError(t, err)
	assert.Equal(t, "123", info.Sub)
	assert.Equal(t, "Bearer token-abc", stub.auth)
}

func TestGoogleVerifierRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*googleStub)
		token  string
		status int
		detail string
	}{
		{name: "empty token", token: "", status: 400, detail: "missing google access token"},
		{name: "userinfo rejects", mutate: func(g *googleStub) { g.status = http.StatusUnauthorized }, status: 401, detail: "google token is invalid"},
		{name: "unverified email", mutate: func(g *googleStub) { g.userInfo["email_verified"] = false }, status: 401, detail: "google email is not verified"},
		{name: "no email", mutate: func(g *googleStub) { g.userInfo["email"] = "" }, status: 401, detail: "google account has no email"},
		{name: "no subject", mutate: func(g *googleStub) { g.userInfo["sub"] = "" }, status: 401, detail: "google account has no subject id"},
		{name: "audience mismatch", mutate: func(g *googleStub) { g.aud = "someone-else" }, status: 401, detail: "google token audience mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &googleStub{userInfo: verifiedInfo(), aud: "client-1"}
			if tt.mutate != nil {
				tt.mutate(stub)
			}
			srv := stub.server(t)
			v := NewGoogleVerifier(srv.URL+"/userinfo", srv.URL+"/tokeninfo", "client-1", srv.Client())

			token := tt.token
			if token == "" && tt.detail != "missing google access token" {
				token = "token-abc"
			}
			_, err := v.Verify(context.Background(), token)
			var httpErr *serverutils.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.Status)
			assert.Equal(t, tt.detail, httpErr.Detail)
		})
	}
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"url-chatroom/internal/pkg/serverutils"

	"golang.org/x/oauth2"
)

type GoogleIdentity struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

type IGoogleVerifier interface {
	Verify(ctx context.Context, accessToken string) (*GoogleIdentity, error)
}

type googleVerifier struct {
	userInfoURL  string
	tokenInfoURL string
	audience     string
	httpClient   *http.Client
}

// NewGoogleVerifier checks provider access tokens against Google's userinfo
// endpoint. A non-empty audience also enforces the token's client id.
func NewGoogleVerifier(userInfoURL, tokenInfoURL, audience string, httpClient *http.Client) IGoogleVerifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &googleVerifier{
		userInfoURL:  userInfoURL,
		tokenInfoURL: tokenInfoURL,
		audience:     audience,
		httpClient:   httpClient,
	}
}

func (v *googleVerifier) Verify(ctx context.Context, accessToken string) (*GoogleIdentity, error) {
	if accessToken == "" {
		return nil, serverutils.BadRequest("missing google access token")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.httpClient)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	var info GoogleIdentity
	if err := getJSON(ctx, client, v.userInfoURL, &info); err != nil {
		return nil, serverutils.Unauthorized("google token is invalid")
	}

	switch {
	case !info.EmailVerified:
		return nil, serverutils.Unauthorized("google email is not verified")
	case info.Email == "":
		return nil, serverutils.Unauthorized("google account has no email")
	case info.Sub == "":
		return nil, serverutils.Unauthorized("google account has no subject id")
	}

	if v.audience != "" {
		var tokenInfo struct {
			Aud string `json:"aud"`
		}
		target := v.tokenInfoURL + "?" + url.Values{"access_token": {accessToken}}.Encode()
		if err := getJSON(ctx, v.httpClient, target, &tokenInfo); err != nil {
			return nil, serverutils.Unauthorized("google token is invalid")
		}
		if tokenInfo.Aud != "" && tokenInfo.Aud != v.audience {
			return nil, serverutils.Unauthorized("google token audience mismatch")
		}
	}

	return &info, nil
}

func getJSON(ctx context.Context, client *http.Client, target string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("GET %s: status %d", target, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

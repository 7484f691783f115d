package identity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"time"

	"url-chatroom/internal/config"
	"url-chatroom/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const currentTokenKey = "access_token"

// GoogleProvider runs Google's consent screen through a loopback redirect
// with PKCE and keeps the resulting access token in an expiring cache.
type GoogleProvider struct {
	cfg        config.GoogleConfig
	endpoint   oauth2.Endpoint
	cache      *cache.Cache
	httpClient *http.Client
	openURL    func(string) error
	out        io.Writer
	logger     logger.ILogger
}

func NewGoogleProvider(cfg config.GoogleConfig, log logger.ILogger) *GoogleProvider {
	p := &GoogleProvider{
		cfg:        cfg,
		endpoint:   google.Endpoint,
		cache:      cache.New(time.Hour, 10*time.Minute),
		httpClient: http.DefaultClient,
		out:        os.Stderr,
		logger:     log,
	}
	if cfg.OpenBrowser {
		p.openURL = openBrowser
	}
	return p
}

// Token returns the cached access token when one is still valid, otherwise
// it runs the browser flow if interactive is set.
func (p *GoogleProvider) Token(ctx context.Context, interactive bool) (string, error) {
	if tok, ok := p.cache.Get(currentTokenKey); ok {
		return tok.(string), nil
	}
	if !interactive {
		return "", ErrNoCachedToken
	}
	if p.cfg.ClientID == "" {
		return "", errors.New("GOOGLE_CLIENT_ID is not configured")
	}

	tok, err := p.browserFlow(ctx)
	if err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", errors.New("provider returned an empty access token")
	}

	ttl := cache.DefaultExpiration
	if !tok.Expiry.IsZero() {
		ttl = time.Until(tok.Expiry)
	}
	p.cache.Set(currentTokenKey, tok.AccessToken, ttl)
	return tok.AccessToken, nil
}

func (p *GoogleProvider) RemoveCached(_ context.Context, token string) error {
	for key, item := range p.cache.Items() {
		if v, ok := item.Object.(string); ok && v == token {
			p.cache.Delete(key)
		}
	}
	return nil
}

func (p *GoogleProvider) ClearCache(_ context.Context) error {
	p.cache.Flush()
	return nil
}

// Revoke invalidates token at the provider.
func (p *GoogleProvider) Revoke(ctx context.Context, token string) error {
	target := p.cfg.RevokeURL + "?token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("revoke token: status %d", resp.StatusCode)
	}
	return nil
}

func (p *GoogleProvider) browserFlow(ctx context.Context) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	oauthCfg := &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		RedirectURL:  fmt.Sprintf("http://%s/callback", ln.Addr().String()),
		Scopes:       p.cfg.Scopes,
		Endpoint:     p.endpoint,
	}

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/callback", func(c *fiber.Ctx) error {
		if reason := c.Query("error"); reason != "" {
			signal(errCh, fmt.Errorf("sign-in was cancelled (%s)", reason))
			return c.Status(fiber.StatusBadRequest).SendString("Sign-in was cancelled. You can close this tab.")
		}
		if c.Query("state") != state {
			signal(errCh, errors.New("state mismatch"))
			return c.Status(fiber.StatusBadRequest).SendString("state mismatch")
		}
		code := c.Query("code")
		if code == "" {
			signal(errCh, errors.New("missing auth code"))
			return c.Status(fiber.StatusBadRequest).SendString("missing code")
		}
		signal(codeCh, code)
		return c.SendString("url-chatroom sign-in complete. You can close this tab.")
	})

	go func() {
		_ = app.Listener(ln)
	}()
	defer func() {
		_ = app.ShutdownWithTimeout(2 * time.Second)
	}()

	authURL := oauthCfg.AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)

	fmt.Fprintln(p.out, "Open this URL to sign in:")
	fmt.Fprintln(p.out, authURL)
	if p.openURL != nil {
		if oerr := p.openURL(authURL); oerr != nil {
			p.logger.Warn("GoogleProvider", "Could not open browser", map[string]interface{}{"error": oerr.Error()})
		}
	}

	timeout := p.cfg.CallbackTimeout
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case code := <-codeCh:
		exchangeCtx := context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
		return oauthCfg.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	case err := <-errCh:
		return nil, err
	case <-timer.C:
		return nil, fmt.Errorf("timed out waiting for browser callback after %s", timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func signal[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
	}
}

func openBrowser(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32.exe", "url.dll,FileProtocolHandler", target)
	case "darwin":
		cmd = exec.Command("open", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	return cmd.Start()
}

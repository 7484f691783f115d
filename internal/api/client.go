// Package api is the typed client for the chat backend's REST endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"url-chatroom/internal/chaterr"
	"url-chatroom/internal/dto"
	"url-chatroom/internal/pkg/logger"
)

// AuthSource supplies the bearer header for every request. It returns nil
// when the caller is signed out.
type AuthSource interface {
	AuthHeader() http.Header
}

type IClient interface {
	ListMessages(ctx context.Context, threadKey string, limit int) ([]dto.Message, error)
	PostMessage(ctx context.Context, req dto.CreateMessageRequest) (*dto.Message, error)
	VerifyGoogle(ctx context.Context, accessToken string) (*dto.SessionResponse, error)
	Me(ctx context.Context) (*dto.User, error)
	UpdateMe(ctx context.Context, displayName string) (*dto.User, error)
}

type Client struct {
	baseURL string
	http    *http.Client
	auth    AuthSource
	logger  logger.ILogger
}

func NewClient(baseURL string, auth AuthSource, httpClient *http.Client, log logger.ILogger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		auth:    auth,
		logger:  log,
	}
}

// ListMessages returns up to limit of the newest messages, oldest first.
func (c *Client) ListMessages(ctx context.Context, threadKey string, limit int) ([]dto.Message, error) {
	q := url.Values{}
	q.Set("thread_key", threadKey)
	q.Set("limit", strconv.Itoa(limit))

	var out []dto.Message
	if err := c.do(ctx, http.MethodGet, "/api/messages?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PostMessage(ctx context.Context, req dto.CreateMessageRequest) (*dto.Message, error) {
	var out dto.Message
	if err := c.do(ctx, http.MethodPost, "/api/messages", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyGoogle exchanges a provider access token for a backend session.
func (c *Client) VerifyGoogle(ctx context.Context, accessToken string) (*dto.SessionResponse, error) {
	var out dto.SessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/google/verify", dto.GoogleVerifyRequest{AccessToken: accessToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*dto.User, error) {
	var out dto.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMe(ctx context.Context, displayName string) (*dto.User, error) {
	var out dto.User
	if err := c.do(ctx, http.MethodPatch, "/api/auth/me", dto.UpdateProfileRequest{DisplayName: displayName}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.auth != nil {
		for key, values := range c.auth.AuthHeader() {
			for _, v := range values {
				req.Header.Add(key, v)
			}
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("API", "Request failed", map[string]interface{}{"method": method, "path": path, "error": err.Error()})
		return &chaterr.TransportError{Op: method + " " + pathOnly(path), Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &chaterr.TransportError{Op: "read response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := decodeDetail(data)
		c.logger.Info("API", "Backend rejected request", map[string]interface{}{
			"method": method,
			"path":   pathOnly(path),
			"status": resp.StatusCode,
			"detail": detail,
		})
		return &chaterr.VerificationError{Status: resp.StatusCode, Detail: detail}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", pathOnly(path), err)
	}
	return nil
}

// decodeDetail pulls a string "detail" out of an error body. Structured
// details (validation arrays) are not shown to users.
func decodeDetail(data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil {
		return ""
	}
	return detail
}

func pathOnly(path string) string {
	p, _, _ := strings.Cut(path, "?")
	return p
}

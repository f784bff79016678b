package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
)

const (
	tokenPath  = "/api/v1/auth/token"
	loginPath  = "/api/v1/auth/login"
	logoutPath = "/api/v1/auth/logout"
	signUpPath = "/api/v1/auth/signup"
)

// AuthClient implements ports.TokenEndpoint with plain HTTP calls. It never
// goes through Pipeline so a refresh cannot recurse into another refresh.
type AuthClient struct {
	baseURL string
	anonKey string
	client  *http.Client
}

func NewAuthClient(baseURL, anonKey string, client *http.Client) *AuthClient {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &AuthClient{baseURL: strings.TrimRight(baseURL, "/"), anonKey: anonKey, client: client}
}

func (c *AuthClient) Login(ctx context.Context, email, password string) (domain.Credential, error) {
	var cred domain.Credential
	err := c.do(ctx, http.MethodPost, loginPath, c.anonKey, map[string]string{
		"email":    email,
		"password": password,
	}, &cred)
	return cred, err
}

func (c *AuthClient) SignUp(ctx context.Context, in ports.SignUpInput) (domain.Credential, error) {
	var cred domain.Credential
	err := c.do(ctx, http.MethodPost, signUpPath, c.anonKey, map[string]string{
		"email":    in.Email,
		"password": in.Password,
		"name":     in.Name,
	}, &cred)
	return cred, err
}

// Refresh authenticates with the refresh token itself.
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (domain.Credential, error) {
	var cred domain.Credential
	err := c.do(ctx, http.MethodGet, tokenPath, refreshToken, nil, &cred)
	return cred, err
}

func (c *AuthClient) Logout(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, logoutPath, accessToken, nil, nil)
}

func (c *AuthClient) do(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &domain.NetworkError{Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.HTTPError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

var _ ports.TokenEndpoint = (*AuthClient)(nil)

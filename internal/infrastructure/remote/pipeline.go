// Package remote talks to the backend data service: authenticated REST calls,
// the auth endpoints, PostgREST-style table access and edge functions.
package remote

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
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/pkg/metrics"
)

const (
	defaultHTTPTimeout = 15 * time.Second
	maxResponseBytes   = 10 << 20
	retryTimeout       = 30 * time.Second
	requestIDHeader    = "X-Request-ID"
)

// TokenSource supplies the bearer for each call and renews it on a 401.
type TokenSource interface {
	AccessToken(ctx context.Context) string
	Refresh(ctx context.Context) (domain.Credential, error)
}

// RawBody is sent as-is with its own content type, e.g. a multipart form
// with its boundary.
type RawBody struct {
	Data        []byte
	ContentType string
}

// Request describes one call relative to the configured base URL.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any // nil, RawBody, or a value encoded as JSON
	Headers http.Header
}

// Response is a buffered 2xx response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// attempt tracks whether a call may still trigger a token refresh.
type attempt int

const (
	firstAttempt attempt = iota
	retryAttempt
)

// Pipeline executes authenticated requests. A 401 on the first attempt
// triggers exactly one refresh and one retry; a retry never refreshes.
// Concurrent callers that hit 401 together may each refresh.
type Pipeline struct {
	baseURL string
	anonKey string
	tokens  TokenSource
	client  *http.Client
	logger  zerolog.Logger
}

// PipelineOption configures Pipeline.
type PipelineOption func(*Pipeline)

// WithHTTPClient sets the HTTP client (default: 15s timeout).
func WithHTTPClient(c *http.Client) PipelineOption {
	return func(p *Pipeline) { p.client = c }
}

// WithLogger sets the pipeline logger.
func WithLogger(l zerolog.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

func NewPipeline(baseURL, anonKey string, tokens TokenSource, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		tokens:  tokens,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Execute sends req and returns the buffered 2xx response. Failures are
// domain.ErrUnauthorized (refresh failed or retry still 401),
// *domain.HTTPError (other non-2xx) or *domain.NetworkError (transport).
func (p *Pipeline) Execute(ctx context.Context, req Request) (*Response, error) {
	return p.execute(ctx, req, firstAttempt)
}

func (p *Pipeline) execute(ctx context.Context, req Request, at attempt) (*Response, error) {
	httpReq, err := p.build(ctx, req)
	if err != nil {
		return nil, err
	}
	requestID := httpReq.Header.Get(requestIDHeader)

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	metrics.RemoteRequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RemoteRequestsTotal.WithLabelValues(req.Method, "network_error").Inc()
		p.logger.Warn().Err(err).Str("request_id", requestID).Str("method", req.Method).Str("path", req.Path).Msg("remote request failed")
		return nil, &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.RemoteRequestsTotal.WithLabelValues(req.Method, "network_error").Inc()
		return nil, &domain.NetworkError{Err: fmt.Errorf("read body: %w", err)}
	}
	metrics.RemoteRequestsTotal.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Inc()
	p.logger.Debug().
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Bool("retry", at == retryAttempt).
		Msg("remote request")

	if resp.StatusCode == http.StatusUnauthorized {
		if at == retryAttempt {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnauthorized, errorMessage(resp.StatusCode, body))
		}
		if _, err := p.tokens.Refresh(ctx); err != nil {
			p.logger.Info().Err(err).Str("request_id", requestID).Msg("refresh after 401 failed")
			return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
		}
		// Like the refresh, the retry outlives a cancelled caller.
		retryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), retryTimeout)
		defer cancel()
		return p.execute(retryCtx, req, retryAttempt)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.HTTPError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func (p *Pipeline) build(ctx context.Context, req Request) (*http.Request, error) {
	target := p.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch b := req.Body.(type) {
	case nil:
	case RawBody:
		body = bytes.NewReader(b.Data)
		contentType = b.ContentType
	case *RawBody:
		body = bytes.NewReader(b.Data)
		contentType = b.ContentType
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range req.Headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	bearer := p.tokens.AccessToken(ctx)
	if bearer == "" {
		bearer = p.anonKey
	}
	httpReq.Header.Set("Authorization", "Bearer "+bearer)
	httpReq.Header.Set("apikey", p.anonKey)
	if httpReq.Header.Get(requestIDHeader) == "" {
		httpReq.Header.Set(requestIDHeader, uuid.NewString())
	}
	return httpReq, nil
}

// errorMessage extracts a readable message from an error body, falling back
// to the status text.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Message          string `json:"message"`
		Error            any    `json:"error"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			return payload.Message
		case payload.ErrorDescription != "":
			return payload.ErrorDescription
		case payload.Msg != "":
			return payload.Msg
		}
		if s, ok := payload.Error.(string); ok && s != "" {
			return s
		}
		if m, ok := payload.Error.(map[string]any); ok {
			if s, ok := m["message"].(string); ok && s != "" {
				return s
			}
		}
	}
	return http.StatusText(status)
}

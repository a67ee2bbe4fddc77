package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"catalog-service/internal/apperr"
	"catalog-service/internal/util"

	"go.uber.org/zap"
)

const (
	defaultAuthTimeout    = 5 * time.Second
	defaultRetryBackoff   = 500 * time.Millisecond
	responseBodyReadLimit = 1024
)

// ServiceVerifier asks the identity service to verify tokens.
// Transport errors and timeouts are retried with a linear backoff.
type ServiceVerifier struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// ServiceOption configures optional verifier behavior.
type ServiceOption func(*ServiceVerifier)

// WithBackoff overrides the base retry delay.
func WithBackoff(d time.Duration) ServiceOption {
	return func(v *ServiceVerifier) {
		if d >= 0 {
			v.backoff = d
		}
	}
}

// NewServiceVerifier creates a verifier posting to <baseURL>/verify
func NewServiceVerifier(baseURL string, timeout time.Duration, maxRetries int, opts ...ServiceOption) *ServiceVerifier {
	if timeout <= 0 {
		timeout = defaultAuthTimeout
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	v := &ServiceVerifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		backoff:    defaultRetryBackoff,
		logger:     util.GetLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

func (v *ServiceVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	ctx, span := util.StartSpan(ctx, "ServiceVerifier.Verify")
	defer span.End()

	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "encode verify request")
	}

	resp, err := v.post(ctx, body)
	if err != nil {
		util.SpanError(span, err)
		util.IdentityRequestsTotal.WithLabelValues("unavailable").Inc()
		return nil, apperr.Unavailable(err, "authentication service unavailable")
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload identityPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			util.IdentityRequestsTotal.WithLabelValues("unavailable").Inc()
			return nil, apperr.Unavailable(err, "authentication service returned an unreadable response")
		}
		util.IdentityRequestsTotal.WithLabelValues("verified").Inc()
		return payload.identity(), nil

	case http.StatusUnauthorized:
		util.IdentityRequestsTotal.WithLabelValues("rejected").Inc()
		return nil, apperr.New(apperr.CodeUnauthorized, "invalid or expired token")

	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		util.IdentityRequestsTotal.WithLabelValues("unavailable").Inc()
		return nil, apperr.Unavailable(
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			fmt.Sprintf("authentication service returned %d", resp.StatusCode))
	}
}

func (v *ServiceVerifier) post(ctx context.Context, body []byte) (*http.Response, error) {
	url := v.baseURL + "/verify"

	var lastErr error
	for attempt := 0; attempt < v.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build verify request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := v.httpClient.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt == v.maxRetries-1 || ctx.Err() != nil {
			break
		}

		wait := v.backoff * time.Duration(attempt+1)
		v.logger.Warn("Identity service request failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", v.maxRetries),
			zap.Duration("wait", wait),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

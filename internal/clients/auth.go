package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Verification failure modes. ErrUnauthenticated is a definitive
// rejection of the credential; ErrAuthUnavailable means the auth
// service could not be reached after retries — the request must fail,
// never be treated as authenticated.
var (
	ErrUnauthenticated = errors.New("invalid or expired token")
	ErrAuthUnavailable = errors.New("auth service unavailable")
)

// VerifiedIdentity is the payload of a successfully validated token.
type VerifiedIdentity struct {
	Subject   string `json:"sub"`
	ExpiresAt int64  `json:"exp"`
	IssuedAt  int64  `json:"iat"`
}

// AuthConfig configures the auth service client.
type AuthConfig struct {
	// BaseURL is the auth service base URL.
	BaseURL string

	// Timeout is the per-attempt request timeout.
	Timeout time.Duration

	// MaxAttempts is the number of verification attempts.
	MaxAttempts int

	// BaseDelay is the initial backoff delay; it doubles per attempt.
	BaseDelay time.Duration
}

// DefaultAuthConfig returns the default auth client configuration.
func DefaultAuthConfig(baseURL string) *AuthConfig {
	return &AuthConfig{
		BaseURL:     baseURL,
		Timeout:     3 * time.Second,
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
	}
}

// AuthClient verifies bearer tokens against the auth service. It sits
// on the critical path of every authenticated operation.
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
	retry      retryPolicy
}

// NewAuthClient creates a new auth service client.
func NewAuthClient(config *AuthConfig) *AuthClient {
	if config == nil {
		config = DefaultAuthConfig("http://localhost:8001")
	}
	return &AuthClient{
		baseURL:    config.BaseURL,
		httpClient: &http.Client{},
		retry: retryPolicy{
			MaxAttempts: config.MaxAttempts,
			BaseDelay:   config.BaseDelay,
			Timeout:     config.Timeout,
		},
	}
}

// Verify validates a bearer token and returns the acting identity.
// A 401 from the auth service fails immediately with
// ErrUnauthenticated; connection errors and 5xx responses are retried,
// and exhausting retries fails with ErrAuthUnavailable.
func (c *AuthClient) Verify(ctx context.Context, token string) (*VerifiedIdentity, error) {
	endpoint := fmt.Sprintf("%s/auth/validate?%s", c.baseURL, url.Values{"token": {token}}.Encode())

	var identity VerifiedIdentity
	err := c.retry.do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("auth request failed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
				return fmt.Errorf("failed to decode auth response: %w", err)
			}
			return nil
		case resp.StatusCode == http.StatusUnauthorized:
			return permanent(ErrUnauthenticated)
		default:
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("auth service returned status %d: %s", resp.StatusCode, string(body))
		}
	})
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}

	if identity.Subject == "" {
		return nil, ErrUnauthenticated
	}
	return &identity, nil
}

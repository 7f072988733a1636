package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/cardduel/cardduel/internal/storage/models"
)

// PlayersConfig configures the player service client.
type PlayersConfig struct {
	// BaseURL is the player service base URL.
	BaseURL string

	// APIKey authenticates service-to-service calls.
	APIKey string

	// Timeout is the per-attempt request timeout.
	Timeout time.Duration

	// MaxAttempts is the number of delivery attempts.
	MaxAttempts int

	// BaseDelay is the initial backoff delay; it doubles per attempt.
	BaseDelay time.Duration

	// MaxDelay caps the backoff delay.
	MaxDelay time.Duration
}

// DefaultPlayersConfig returns the default player client configuration.
func DefaultPlayersConfig(baseURL string) *PlayersConfig {
	return &PlayersConfig{
		BaseURL:     baseURL,
		Timeout:     5 * time.Second,
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// PlayersClient pushes finished-match results to the player service so
// it can update long-term statistics. Delivery is best effort: the
// receiving side is idempotent on the external match id, and a summary
// that cannot be delivered after retries is dropped with a log line.
type PlayersClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      retryPolicy
}

// NewPlayersClient creates a new player service client.
func NewPlayersClient(config *PlayersConfig) *PlayersClient {
	if config == nil {
		config = DefaultPlayersConfig("http://localhost:8002")
	}
	return &PlayersClient{
		baseURL:    config.BaseURL,
		apiKey:     config.APIKey,
		httpClient: &http.Client{},
		retry: retryPolicy{
			MaxAttempts: config.MaxAttempts,
			BaseDelay:   config.BaseDelay,
			MaxDelay:    config.MaxDelay,
			Timeout:     config.Timeout,
		},
	}
}

// FinalizeMatch delivers a finished match's summary. Failures never
// touch match state; the caller treats the returned error as
// log-and-drop.
func (c *PlayersClient) FinalizeMatch(ctx context.Context, summary *models.MatchSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode match summary: %w", err)
	}

	endpoint := c.baseURL + "/matches"

	err = c.retry.do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-API-Key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("finalize request failed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
			return nil
		}

		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("player service returned status %d: %s", resp.StatusCode, string(body))
	})
	if err != nil {
		return fmt.Errorf("failed to finalize match %s: %w", summary.MatchID, err)
	}

	log.Printf("[players] finalized match %s", summary.MatchID)
	return nil
}

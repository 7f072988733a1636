package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthConfig(baseURL string) *AuthConfig {
	return &AuthConfig{
		BaseURL:     baseURL,
		Timeout:     time.Second,
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
	}
}

func TestAuthVerifySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/validate", r.URL.Path)
		assert.Equal(t, "sometoken", r.URL.Query().Get("token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub": "alice", "exp": 1900000000, "iat": 1890000000}`))
	}))
	defer server.Close()

	client := NewAuthClient(testAuthConfig(server.URL))

	identity, err := client.Verify(context.Background(), "sometoken")
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Subject)
	assert.Equal(t, int64(1900000000), identity.ExpiresAt)
}

func TestAuthVerifyRejectedTokenIsNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewAuthClient(testAuthConfig(server.URL))

	_, err := client.Verify(context.Background(), "badtoken")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, int32(1), attempts.Load(), "401 must fail immediately, without retries")
}

func TestAuthVerifyRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub": "alice", "exp": 1900000000, "iat": 1890000000}`))
	}))
	defer server.Close()

	client := NewAuthClient(testAuthConfig(server.URL))

	identity, err := client.Verify(context.Background(), "sometoken")
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Subject)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestAuthVerifyUnavailableAfterRetries(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewAuthClient(testAuthConfig(server.URL))

	_, err := client.Verify(context.Background(), "sometoken")
	assert.ErrorIs(t, err, ErrAuthUnavailable)
	assert.False(t, errors.Is(err, ErrUnauthenticated), "an unreachable verifier must never look like a rejected token")
	assert.Equal(t, int32(3), attempts.Load())
}

func TestAuthVerifyConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse all connections

	client := NewAuthClient(testAuthConfig(server.URL))

	_, err := client.Verify(context.Background(), "sometoken")
	assert.ErrorIs(t, err, ErrAuthUnavailable)
}

func TestAuthVerifyEmptySubjectRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"exp": 1900000000, "iat": 1890000000}`))
	}))
	defer server.Close()

	client := NewAuthClient(testAuthConfig(server.URL))

	_, err := client.Verify(context.Background(), "sometoken")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

package util

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("u-1", "investor", "i@example.com", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "investor", claims.Role)
	assert.Equal(t, "i@example.com", claims.Email)
}

func TestParseJWT_Rejects(t *testing.T) {
	token, err := GenerateJWT("u-1", "founder", "f@example.com", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "other")
	require.Error(t, err)

	_, err = ParseJWT("", "secret")
	require.Error(t, err)

	fallback, err := GenerateJWT("u-1", "founder", "f@example.com", "secret", -time.Hour)
	require.NoError(t, err)
	// a non-positive ttl falls back to the default lifetime
	_, err = ParseJWT(fallback, "secret")
	require.NoError(t, err)
}

func TestExtractToken(t *testing.T) {
	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ExtractToken(r))

	r.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, "abc", ExtractToken(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, ExtractToken(r))
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.True(t, CheckPassword("password123", hash))
	assert.False(t, CheckPassword("nope", hash))
}

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		err       error
		retryable bool
		kind      string
	}{
		{fmt.Errorf("wrap: %w", pgx.ErrNoRows), false, "not_found"},
		{&pgconn.PgError{Code: "23505"}, false, "duplicate_key"},
		{&pgconn.PgError{Code: "08006"}, true, "db_connection_error"},
		{context.DeadlineExceeded, true, "timeout"},
		{context.Canceled, false, "context_canceled"},
		{errors.New("boom"), false, "unknown_error"},
	}
	for _, tc := range cases {
		retryable, kind := IsRetryableError(tc.err)
		assert.Equal(t, tc.retryable, retryable, tc.kind)
		assert.Equal(t, tc.kind, kind)
	}

	assert.True(t, ShouldRetry(2, 3, true))
	assert.False(t, ShouldRetry(4, 3, true))
	assert.False(t, ShouldRetry(0, 3, false))
}

package server

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("")
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestTokenRoundTrip(t *testing.T) {
	tokens, err := NewTokenService(testSecret)
	require.NoError(t, err)

	token, err := tokens.Issue("alice")
	require.NoError(t, err)

	user, err := tokens.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "alice", user)

	_, err = tokens.Issue("")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	tokens, err := NewTokenService(testSecret)
	require.NoError(t, err)

	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }
	token, err := tokens.Issue("alice")
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(DefaultTokenTTL + time.Minute) }
	_, err = tokens.Validate(token)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenRejected(t *testing.T) {
	tokens, err := NewTokenService(testSecret)
	require.NoError(t, err)

	other, err := NewTokenService("another-secret")
	require.NoError(t, err)
	foreign, err := other.Issue("mallory")
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "mallory"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"wrong secret": foreign,
		"alg none":     unsigned,
		"no subject":   noSubject,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Validate(token)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidToken), err.Error())
		})
	}
}

func TestClientLimiter(t *testing.T) {
	require.Nil(t, newClientLimiter(0))

	l := newClientLimiter(1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	require.True(t, l.allow("a"))
	require.True(t, l.allow("a"))
	require.False(t, l.allow("a"))
	require.True(t, l.allow("b"), "clients have separate buckets")

	now = now.Add(time.Second)
	require.True(t, l.allow("a"))

	now = now.Add(limiterIdle + time.Second)
	l.allow("c")
	l.mu.Lock()
	_, kept := l.limiters["a"]
	l.mu.Unlock()
	require.False(t, kept, "idle buckets are swept")
}

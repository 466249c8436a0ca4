package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"messageboard/internal/domain"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func TestTokens(t *testing.T) {
	tokens, err := NewTokens(testSecret, "messageboard")
	require.NoError(t, err)

	t.Run("should round trip the user", func(t *testing.T) {
		req := require.New(t)
		user := domain.User{ID: 42, Name: "Alice"}

		raw, err := tokens.Issue(user, time.Hour)
		req.NoError(err)

		got, err := tokens.Parse(raw)
		req.NoError(err)
		req.Equal(user, got)
	})

	t.Run("should reject an expired token", func(t *testing.T) {
		req := require.New(t)

		raw, err := tokens.Issue(domain.User{ID: 1, Name: "Alice"}, -time.Minute)
		req.NoError(err)

		_, err = tokens.Parse(raw)
		req.ErrorIs(err, ErrInvalidToken)
	})

	t.Run("should reject a token signed with another secret", func(t *testing.T) {
		req := require.New(t)
		other, err := NewTokens(strings.Repeat("z", 40), "messageboard")
		req.NoError(err)

		raw, err := other.Issue(domain.User{ID: 1, Name: "Mallory"}, time.Hour)
		req.NoError(err)

		_, err = tokens.Parse(raw)
		req.ErrorIs(err, ErrInvalidToken)
	})

	t.Run("should reject a token from another issuer", func(t *testing.T) {
		req := require.New(t)
		other, err := NewTokens(testSecret, "elsewhere")
		req.NoError(err)

		raw, err := other.Issue(domain.User{ID: 1, Name: "Alice"}, time.Hour)
		req.NoError(err)

		_, err = tokens.Parse(raw)
		req.ErrorIs(err, ErrInvalidToken)
	})

	t.Run("should reject garbage", func(t *testing.T) {
		_, err := tokens.Parse("invalid-token-string")
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewTokensRequiresLongSecret(t *testing.T) {
	_, err := NewTokens("short", "messageboard")
	require.Error(t, err)
}

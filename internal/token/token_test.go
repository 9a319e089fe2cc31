package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	svc, err := NewService([]byte("secret"), "HS256", 30*time.Minute)
	require.NoError(t, err)

	signed, err := svc.Issue(42, "Goose")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := svc.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, uint(42), claims.UserID)
	require.Equal(t, "Goose", claims.Username)
	require.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt.Time, time.Minute)
}

func TestParseExpired(t *testing.T) {
	svc, err := NewService([]byte("secret"), "HS256", -time.Minute)
	require.NoError(t, err)

	signed, err := svc.Issue(42, "Goose")
	require.NoError(t, err)

	_, err = svc.Parse(signed)
	require.Error(t, err)
}

func TestParseWrongSecret(t *testing.T) {
	issuer, err := NewService([]byte("secret"), "HS256", 30*time.Minute)
	require.NoError(t, err)
	verifier, err := NewService([]byte("other-secret"), "HS256", 30*time.Minute)
	require.NoError(t, err)

	signed, err := issuer.Issue(42, "Goose")
	require.NoError(t, err)

	_, err = verifier.Parse(signed)
	require.Error(t, err)
}

func TestParseGarbage(t *testing.T) {
	svc, err := NewService([]byte("secret"), "HS256", 30*time.Minute)
	require.NoError(t, err)

	_, err = svc.Parse("not.a.token")
	require.Error(t, err)
}

func TestNewServiceRejectsBadConfig(t *testing.T) {
	_, err := NewService(nil, "HS256", 30*time.Minute)
	require.Error(t, err)

	_, err = NewService([]byte("secret"), "none", 30*time.Minute)
	require.Error(t, err)

	_, err = NewService([]byte("secret"), "RS256", 30*time.Minute)
	require.Error(t, err)
}

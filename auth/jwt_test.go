package auth

import (
	"commonroom/apperr"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = Identity{ID: "u1", Email: "alice@example.com", Name: "Alice", Username: "alice"}

func TestTokenService_IssueVerify(t *testing.T) {
	s := NewTokenService("secret", time.Hour)

	token, err := s.Issue(alice)
	require.NoError(t, err)

	got, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, alice, got)
}

func TestTokenService_Expired(t *testing.T) {
	s := NewTokenService("secret", -time.Minute)

	token, err := s.Issue(alice)
	require.NoError(t, err)

	_, err = s.Verify(token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenService_WrongSecret(t *testing.T) {
	token, err := NewTokenService("secret", time.Hour).Issue(alice)
	require.NoError(t, err)

	_, err = NewTokenService("other", time.Hour).Verify(token)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{Identity: alice})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenService("secret", time.Hour).Verify(signed)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}

func TestTokenService_VerifyHeader(t *testing.T) {
	s := NewTokenService("secret", time.Hour)
	token, err := s.Issue(alice)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{"missing", "", "Authorization header must be provided"},
		{"no bearer", "Token " + token, "Authentication token must be 'Bearer [token]'"},
		{"empty bearer", "Bearer ", "Authentication token must be 'Bearer [token]'"},
		{"garbage", "Bearer abc", "Invalid/Expired Token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.VerifyHeader(tt.header)
			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperr.KindAuth, appErr.Kind)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}

	got, err := s.VerifyHeader("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
}

package auth

import (
	"commonroom/apperr"
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"strings"
	"time"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is what a verified token says about its bearer.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type Claims struct {
	jwt.RegisteredClaims
	Identity
}

type TokenService struct {
	secretKey        []byte
	validityDuration time.Duration
}

func NewTokenService(secretKey string, validityDuration time.Duration) *TokenService {
	return &TokenService{secretKey: []byte(secretKey), validityDuration: validityDuration}
}

func (s *TokenService) Issue(identity Identity) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validityDuration)),
		},
		Identity: identity,
	})

	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// Verify parses and validates a token. Any failure is reported as an auth
// error so callers can return it to the client as is.
func (s *TokenService) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, &apperr.Error{Kind: apperr.KindAuth, Message: "Invalid/Expired Token", Err: err}
	}
	if !token.Valid || claims.Identity.ID == "" {
		return Identity{}, &apperr.Error{Kind: apperr.KindAuth, Message: "Invalid/Expired Token", Err: ErrInvalidToken}
	}
	return claims.Identity, nil
}

// VerifyHeader extracts the token from an "Authorization: Bearer <token>"
// header value and verifies it.
func (s *TokenService) VerifyHeader(header string) (Identity, error) {
	if header == "" {
		return Identity{}, apperr.Auth("Authorization header must be provided")
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return Identity{}, apperr.Auth("Authentication token must be 'Bearer [token]'")
	}
	return s.Verify(strings.TrimSpace(token))
}

// Package token issues and verifies the bearer tokens that carry user
// identity between requests. Tokens are self-contained: nothing is stored
// server-side and there is no revocation, a token stays valid until its
// expiry elapses.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Service struct {
	secret   []byte
	method   jwt.SigningMethod
	lifetime time.Duration
}

func NewService(secret []byte, algorithm string, lifetime time.Duration) (*Service, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token: empty signing secret")
	}
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("token: unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("token: algorithm %q is not an HMAC method", algorithm)
	}
	return &Service{secret: secret, method: method, lifetime: lifetime}, nil
}

func (s *Service) Issue(userID uint, username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}
	t := jwt.NewWithClaims(s.method, claims)
	return t.SignedString(s.secret)
}

func (s *Service) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !t.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.UserID == 0 {
		return nil, fmt.Errorf("invalid token: missing user_id claim")
	}
	return claims, nil
}

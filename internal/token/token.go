// Package token issues and verifies the anti-forgery tokens that editor
// requests must carry.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid editor token")

// Issuer signs short-lived editor tokens with an HMAC secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Issue creates a token. An empty planID scopes the token to creating new
// plans only.
func (i *Issuer) Issue(planID string) (string, error) {
	claims := jwt.MapClaims{
		"type": "editor",
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(i.ttl).Unix(),
	}
	if planID != "" {
		claims["plan_id"] = planID
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}

// Verify parses and validates a token, returning the plan scope ("" for an
// unscoped token).
func (i *Issuer) Verify(tokenString string) (string, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil || !t.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok || claims["type"] != "editor" {
		return "", ErrInvalidToken
	}

	planID, _ := claims["plan_id"].(string)
	return planID, nil
}

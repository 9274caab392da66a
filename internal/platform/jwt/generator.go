// Package jwtmw issues and verifies the HS256 tokens used by the API.
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token types stored in the "typ" claim.
const (
	TypeAccess        = "access"
	TypePasswordReset = "password_reset"
)

// ErrInvalidToken is returned when a token fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Generator defines the interface for JWT token generation.
type Generator interface {
	// GenerateToken creates a signed access token for the given user.
	GenerateToken(userID uint, email string, staff bool) (string, error)
}

// generator implements the Generator interface.
type generator struct {
	secret     []byte
	expiration time.Duration
}

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
func NewGenerator(secret string, expiration time.Duration) *generator {
	return &generator{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

// GenerateToken creates a signed JWT token with standard claims.
func (g *generator) GenerateToken(userID uint, email string, staff bool) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"exp":   now.Add(g.expiration).Unix(),
		"iat":   now.Unix(),
		"email": email,
		"staff": staff,
		"typ":   TypeAccess,
	}
	return sign(g.secret, claims)
}

// ExpiresIn returns the access token lifetime in seconds.
func (g *generator) ExpiresIn() int64 {
	return int64(g.expiration.Seconds())
}

// ResetTokens issues single-purpose password reset tokens. The fingerprint
// claim binds a token to the password hash it was issued for, so a token
// stops working once the password changes.
type ResetTokens struct {
	secret []byte
	ttl    time.Duration
}

// NewResetTokens creates a ResetTokens signer.
func NewResetTokens(secret string, ttl time.Duration) *ResetTokens {
	return &ResetTokens{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed reset token for userID.
func (r *ResetTokens) Issue(userID uint, fingerprint string) (string, error) {
	now := time.Now()
	return sign(r.secret, jwt.MapClaims{
		"sub": userID,
		"exp": now.Add(r.ttl).Unix(),
		"iat": now.Unix(),
		"fp":  fingerprint,
		"typ": TypePasswordReset,
	})
}

// Parse verifies token and returns its user id and fingerprint.
func (r *ResetTokens) Parse(token string) (uint, string, error) {
	claims, err := parse(r.secret, token)
	if err != nil {
		return 0, "", err
	}
	if typ, _ := claims["typ"].(string); typ != TypePasswordReset {
		return 0, "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	fp, _ := claims["fp"].(string)
	return uint(sub), fp, nil
}

func sign(secret []byte, claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func parse(secret []byte, tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// HMAC 以外のアルゴリズムは拒否
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

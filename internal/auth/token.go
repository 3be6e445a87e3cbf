package auth

import (
	"fmt"
	"time"

	chaterrors "github.com/Tyrowin/cipherchat/internal/errors"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "cipherchat"

// Issuer mints and validates HS256 tokens whose subject is a username.
type Issuer struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

func NewIssuer(secret string, duration time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), duration: duration, now: time.Now}
}

// GenerateToken creates a signed JWT asserting username.
func (i *Issuer) GenerateToken(username string) (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.duration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", chaterrors.ErrTokenGeneration, err)
	}
	return signed, nil
}

// ValidateToken checks signature, algorithm and expiry and returns the
// username the token was issued for.
func (i *Issuer) ValidateToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", chaterrors.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", chaterrors.ErrInvalidToken
	}
	return claims.Subject, nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
)

const localIssuer = "doctors-portal-local"

type LocalClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// LocalVerifier signs and checks HS256 tokens with a shared secret. It
// stands in for the identity provider in development.
type LocalVerifier struct {
	secret []byte
}

func NewLocalVerifier(secret string) (*LocalVerifier, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not configured")
	}
	return &LocalVerifier{secret: []byte(secret)}, nil
}

// Generate creates a token for email valid for ttl.
func (v *LocalVerifier) Generate(email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &LocalClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    localIssuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

func (v *LocalVerifier) VerifyIDToken(_ context.Context, tokenStr string) (models.Principal, error) {
	claims := &LocalClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(localIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return models.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return models.Principal{Email: claims.Email, Subject: claims.Subject}, nil
}

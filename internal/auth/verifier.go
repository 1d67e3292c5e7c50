package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
)

const bearerPrefix = "Bearer "

var (
	ErrNoCredential = errors.New("no credential")
	ErrInvalidToken = errors.New("invalid token")
)

// TokenVerifier checks a raw identity token with the identity provider.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (models.Principal, error)
}

// CredentialVerifier turns an Authorization header into a Principal. It
// always returns either a Principal or one of ErrNoCredential and
// ErrInvalidToken; deciding what an error means is up to the caller.
type CredentialVerifier struct {
	tokens TokenVerifier
}

func NewCredentialVerifier(tokens TokenVerifier) *CredentialVerifier {
	return &CredentialVerifier{tokens: tokens}
}

func (v *CredentialVerifier) Verify(ctx context.Context, header string) (models.Principal, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return models.Principal{}, ErrNoCredential
	}

	raw := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if raw == "" {
		return models.Principal{}, ErrNoCredential
	}

	p, err := v.tokens.VerifyIDToken(ctx, raw)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return models.Principal{}, err
		}
		return models.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if p.Email == "" {
		return models.Principal{}, fmt.Errorf("%w: token has no email claim", ErrInvalidToken)
	}
	return p, nil
}

type rejectAll struct{}

func (rejectAll) VerifyIDToken(context.Context, string) (models.Principal, error) {
	return models.Principal{}, fmt.Errorf("%w: no identity provider configured", ErrInvalidToken)
}

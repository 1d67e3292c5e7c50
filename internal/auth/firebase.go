package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
)

// GoogleSecureTokenJWKS serves the keys that sign Firebase ID tokens.
const GoogleSecureTokenJWKS = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

type FirebaseClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// FirebaseVerifier validates Firebase Authentication ID tokens for a single
// project.
type FirebaseVerifier struct {
	projectID string
	issuer    string
	keys      *keySet
}

type FirebaseOption func(*FirebaseVerifier)

// WithJWKSURL points the verifier at a different key endpoint (for tests).
func WithJWKSURL(url string) FirebaseOption {
	return func(v *FirebaseVerifier) {
		v.keys.url = url
	}
}

func NewFirebaseVerifier(projectID string, opts ...FirebaseOption) (*FirebaseVerifier, error) {
	if projectID == "" {
		return nil, errors.New("firebase project id is required")
	}

	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")

	v := &FirebaseVerifier{
		projectID: projectID,
		issuer:    "https://securetoken.google.com/" + projectID,
		keys:      newKeySet(GoogleSecureTokenJWKS, client),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

func (v *FirebaseVerifier) VerifyIDToken(ctx context.Context, token string) (models.Principal, error) {
	claims := &FirebaseClaims{}

	keyFunc := func(t *jwt.Token) (interface{}, error) {
		kid, ok := t.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("missing key id in token")
		}
		return v.keys.get(ctx, kid)
	}

	parsed, err := jwt.ParseWithClaims(token, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil || !parsed.Valid {
		return models.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return models.Principal{}, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	if claims.Email == "" {
		return models.Principal{}, fmt.Errorf("%w: token has no email claim", ErrInvalidToken)
	}

	return models.Principal{Email: claims.Email, Subject: claims.Subject}, nil
}

// ProjectIDFromServiceAccount reads project_id from a service-account key.
func ProjectIDFromServiceAccount(serviceAccountJSON string) (string, error) {
	var sa struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal([]byte(serviceAccountJSON), &sa); err != nil {
		return "", fmt.Errorf("parse service account: %w", err)
	}
	if sa.ProjectID == "" {
		return "", errors.New("service account has no project_id")
	}
	return sa.ProjectID, nil
}

package auth

import (
	"fmt"
	"log/slog"

	"github.com/harentsoaR/doctors-portal-api/internal/config"
)

// NewTokenVerifier picks the identity provider from configuration: Firebase
// when a service account or project id is set, the local HS256 verifier
// when only JWT_SECRET is set, and otherwise one that rejects every token.
func NewTokenVerifier(cfg config.Config, log *slog.Logger) (TokenVerifier, error) {
	projectID := cfg.FirebaseProjectID
	if projectID == "" && cfg.FirebaseServiceAccount != "" {
		id, err := ProjectIDFromServiceAccount(cfg.FirebaseServiceAccount)
		if err != nil {
			return nil, fmt.Errorf("firebase service account: %w", err)
		}
		projectID = id
	}

	if projectID != "" {
		v, err := NewFirebaseVerifier(projectID)
		if err != nil {
			return nil, err
		}
		log.Info("identity provider: firebase", "project_id", projectID)
		return v, nil
	}

	if cfg.JWTSecret != "" {
		v, err := NewLocalVerifier(cfg.JWTSecret)
		if err != nil {
			return nil, err
		}
		log.Warn("identity provider: local HS256 tokens, not for production")
		return v, nil
	}

	log.Warn("no identity provider configured, bearer tokens will be rejected")
	return rejectAll{}, nil
}

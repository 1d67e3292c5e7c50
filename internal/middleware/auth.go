package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/doctors-portal-api/internal/auth"
	"github.com/harentsoaR/doctors-portal-api/internal/models"
)

const ctxPrincipalKey = "auth.principal"

// CredentialVerifier is satisfied by auth.CredentialVerifier.
type CredentialVerifier interface {
	Verify(ctx context.Context, header string) (models.Principal, error)
}

// TokenVerify attaches the verified Principal to the request when the
// Authorization header carries a valid bearer token. Missing or invalid
// tokens leave the request anonymous; routes that need an identity decide
// for themselves.
func TokenVerify(verifier CredentialVerifier, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		principal, err := verifier.Verify(c.Request.Context(), header)
		switch {
		case err == nil:
			c.Set(ctxPrincipalKey, principal)
		case errors.Is(err, auth.ErrNoCredential):
		default:
			log.DebugContext(c.Request.Context(), "token rejected, continuing anonymously",
				"err", err, "request_id", c.GetString(ctxRequestIDKey))
		}

		c.Next()
	}
}

// PrincipalFromContext returns the verified identity, or nil for an
// anonymous request.
func PrincipalFromContext(c *gin.Context) *models.Principal {
	v, ok := c.Get(ctxPrincipalKey)
	if !ok {
		return nil
	}
	p, ok := v.(models.Principal)
	if !ok {
		return nil
	}
	return &p
}

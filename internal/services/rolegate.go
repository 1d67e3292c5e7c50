package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
	"github.com/harentsoaR/doctors-portal-api/internal/store"
)

const (
	ReasonNoCredential     = "no credential"
	ReasonInsufficientRole = "insufficient role"
)

// Decision is the outcome of a role check. The zero value is a denial.
type Decision struct {
	Authorized bool
	Reason     string
}

func Authorized() Decision {
	return Decision{Authorized: true}
}

func Denied(reason string) Decision {
	return Decision{Reason: reason}
}

// RoleLookup reads a user's stored record.
type RoleLookup interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// RoleGate decides privileged mutations from the requester's stored role.
// The requester is always the verified principal, never an email taken from
// the request body.
type RoleGate struct {
	users RoleLookup
	log   *slog.Logger
}

func NewRoleGate(users RoleLookup, log *slog.Logger) *RoleGate {
	return &RoleGate{users: users, log: log}
}

// AuthorizePromotion checks whether principal may promote targetEmail to
// Admin. Store failures are returned as errors, not as denials.
func (g *RoleGate) AuthorizePromotion(ctx context.Context, principal *models.Principal, targetEmail string) (Decision, error) {
	if principal == nil || principal.Email == "" {
		g.log.InfoContext(ctx, "admin promotion denied", "reason", ReasonNoCredential, "target", targetEmail)
		return Denied(ReasonNoCredential), nil
	}

	requester, err := g.users.FindByEmail(ctx, principal.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			g.log.InfoContext(ctx, "admin promotion denied", "reason", ReasonInsufficientRole,
				"requester", principal.Email, "target", targetEmail, "requester_found", false)
			return Denied(ReasonInsufficientRole), nil
		}
		return Decision{}, fmt.Errorf("lookup requester: %w", err)
	}

	if !requester.EffectiveRole().IsAdmin() {
		g.log.InfoContext(ctx, "admin promotion denied", "reason", ReasonInsufficientRole,
			"requester", principal.Email, "target", targetEmail, "requester_role", requester.EffectiveRole())
		return Denied(ReasonInsufficientRole), nil
	}

	return Authorized(), nil
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/doctors-portal-api/internal/middleware"
	"github.com/harentsoaR/doctors-portal-api/internal/models"
	"github.com/harentsoaR/doctors-portal-api/internal/store"
)

const promotionDeniedMessage = "you do not have access to make admin"

// POST /user
func (h *Handler) CreateUser(c *gin.Context) {
	var u models.User
	if !BindJSON(c, &u) {
		return
	}

	id, err := h.users.Insert(c.Request.Context(), u)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			RespondConflict(c, "duplicate_email", "A user with this email already exists")
			return
		}
		h.log.ErrorContext(c.Request.Context(), "create user failed", "err", err, "request_id", requestIDFrom(c))
		RespondInternal(c, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"insertedId": id})
}

// PUT /user creates or updates the profile for the body's email. Sign-in
// flows call it on every login.
func (h *Handler) UpsertUser(c *gin.Context) {
	var u models.User
	if !BindJSON(c, &u) {
		return
	}

	res, err := h.users.Upsert(c.Request.Context(), u)
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "upsert user failed", "err", err, "request_id", requestIDFrom(c))
		RespondInternal(c, "Failed to save user")
		return
	}

	c.JSON(http.StatusOK, res)
}

type promoteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PUT /user/admin promotes the body's email to Admin. The requester is the
// verified principal; the body only names the target. Body errors are
// reported only to requesters the gate lets through.
func (h *Handler) PromoteAdmin(c *gin.Context) {
	var req promoteRequest
	bindErr := c.ShouldBindJSON(&req)

	principal := middleware.PrincipalFromContext(c)
	decision, err := h.gate.AuthorizePromotion(c.Request.Context(), principal, req.Email)
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "role check failed", "err", err, "request_id", requestIDFrom(c))
		RespondInternal(c, "Failed to check requester role")
		return
	}
	if !decision.Authorized {
		RespondForbidden(c, promotionDeniedMessage, decision.Reason)
		return
	}
	if bindErr != nil {
		RespondBadRequest(c, "Invalid request body", parseBindError(bindErr, &req, "json"))
		return
	}

	res, err := h.users.SetRole(c.Request.Context(), req.Email, models.RoleAdmin)
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "promote user failed", "err", err, "request_id", requestIDFrom(c))
		RespondInternal(c, "Failed to promote user")
		return
	}

	h.log.InfoContext(c.Request.Context(), "user promoted to admin",
		"requester", principal.Email, "target", req.Email, "matched", res.MatchedCount)
	c.JSON(http.StatusOK, res)
}

// GET /user/:email
func (h *Handler) GetUserAdmin(c *gin.Context) {
	u, err := h.users.FindByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"admin": false})
			return
		}
		h.log.ErrorContext(c.Request.Context(), "find user failed", "err", err, "request_id", requestIDFrom(c))
		RespondInternal(c, "Failed to look up user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"admin": u.EffectiveRole().IsAdmin()})
}

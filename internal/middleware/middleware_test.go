package middleware

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/doctors-portal-api/internal/auth"
	"github.com/harentsoaR/doctors-portal-api/internal/models"
)

type fakeTokens map[string]string

func (f fakeTokens) VerifyIDToken(_ context.Context, token string) (models.Principal, error) {
	email, ok := f[token]
	if !ok {
		return models.Principal{}, fmt.Errorf("%w: unknown token", auth.ErrInvalidToken)
	}
	return models.Principal{Email: email, Subject: "uid-" + token}, nil
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	verifier := auth.NewCredentialVerifier(fakeTokens{"good": "a@x.com"})

	r := gin.New()
	r.Use(RequestID(), TokenVerify(verifier, log), RequestLogger(log))
	r.GET("/whoami", func(c *gin.Context) {
		p := PrincipalFromContext(c)
		if p == nil {
			c.JSON(http.StatusOK, gin.H{"anonymous": true, "request_id": RequestIDFromContext(c)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": p.Email, "request_id": RequestIDFromContext(c)})
	})
	return r
}

func TestTokenVerify(t *testing.T) {
	r := setupRouter()

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid bearer", "Bearer good", `"email":"a@x.com"`},
		{"no header", "", `"anonymous":true`},
		{"wrong scheme", "Basic good", `"anonymous":true`},
		{"empty bearer", "Bearer ", `"anonymous":true`},
		{"unknown token", "Bearer forged", `"anonymous":true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestRequestIDEchoesOrGenerates(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Request-Id", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-Id"))
	assert.Contains(t, w.Body.String(), `"request_id":"req-123"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Len(t, w.Header().Get("X-Request-Id"), 36)
}

func TestMaxBodyBytes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(MaxBodyBytes(4))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("too long")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

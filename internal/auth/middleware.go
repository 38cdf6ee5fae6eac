package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/moogar0880/problems"
	"go.uber.org/zap"

	"github.com/agenthands/automationvault/internal/core/common"
)

const identityKey = "identity"

// RequireUser rejects requests without a valid bearer token. A verifier
// without a secret answers 500.
func RequireUser(v *Verifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			unauthorized(c, "missing bearer token")
			return
		}

		id, err := v.Verify(token)
		if errors.Is(err, common.ErrMisconfigured) {
			log.Error("JWT secret not configured, cannot verify tokens", zap.String("path", c.Request.URL.Path))
			abortProblem(c, http.StatusInternalServerError, "misconfigured", "authentication is not configured")
			return
		}
		if err != nil {
			unauthorized(c, "token verification failed")
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// OptionalUser attaches the identity when a valid token is present and
// lets anonymous requests through.
func OptionalUser(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c.GetHeader("Authorization")); token != "" {
			if id, err := v.Verify(token); err == nil {
				c.Set(identityKey, id)
			}
		}
		c.Next()
	}
}

func FromGin(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok
}

// UserID returns the signed-in user id or "".
func UserID(c *gin.Context) string {
	if id, ok := FromGin(c); ok {
		return id.UserID
	}
	return ""
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func unauthorized(c *gin.Context, detail string) {
	abortProblem(c, http.StatusUnauthorized, "unauthenticated", detail)
}

func abortProblem(c *gin.Context, status int, kind, detail string) {
	problem := problems.NewStatusProblem(status).
		WithInstance(c.Request.URL.Path).
		WithType(kind).
		WithDetail(detail)

	c.Header("Content-Type", problems.ProblemMediaType)
	c.AbortWithStatusJSON(status, problem)
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobhunter/internal/auth"
	"jobhunter/internal/resume"
)

const actorKey = "actorClaims"

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

// AuthMiddleware validates the bearer access token and stores the decoded
// actor in the context for handlers.
func AuthMiddleware(validator *auth.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c)
			return
		}

		rawToken := parts[1]
		if strings.TrimSpace(rawToken) == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := validator.ValidateToken(rawToken)
		if err != nil || claims.TokenType != "access" {
			abortUnauthorized(c)
			return
		}

		SetActor(c, resume.Actor{
			UserID:    claims.UserID,
			Email:     claims.Email,
			Role:      claims.Role,
			CompanyID: claims.CompanyID,
		})
		c.Next()
	}
}

// SetActor stores the authenticated actor in the context. Exported for tests
// that bypass token validation.
func SetActor(c *gin.Context, actor resume.Actor) {
	c.Set(actorKey, actor)
}

// ActorFromContext returns the authenticated actor set by AuthMiddleware.
func ActorFromContext(c *gin.Context) (resume.Actor, bool) {
	value, exists := c.Get(actorKey)
	if !exists {
		return resume.Actor{}, false
	}
	actor, ok := value.(resume.Actor)
	return actor, ok
}

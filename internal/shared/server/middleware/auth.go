package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"healthdocs-backend/internal/shared/auth"
	"healthdocs-backend/internal/shared/server/respond"
	"healthdocs-backend/internal/shared/telemetry"
)

const (
	userIDKey = "userId"

	// AnonymousUserID is used when neither a token nor a user header is sent.
	AnonymousUserID = "anonymous_user"
	// UserIDHeader carries the caller id when tokens are not required.
	UserIDHeader = "X-User-Id"
)

// AuthConfig controls how callers are identified.
type AuthConfig struct {
	// Verifier checks bearer tokens. A nil Verifier rejects every bearer token.
	Verifier *auth.Verifier
	// Required rejects requests without a valid bearer token.
	Required bool
	// Public lists paths served without identity.
	Public []string
}

// Auth resolves the caller id from a verified bearer token or, when tokens are
// optional, from the X-User-Id header with an anonymous fallback.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	public := make(map[string]struct{}, len(cfg.Public))
	for _, p := range cfg.Public {
		public[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}
		if _, ok := public[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") || cfg.Verifier == nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
			subject, err := cfg.Verifier.Verify(token)
			if err != nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
				return
			}
			c.Set(userIDKey, subject)
			c.Next()
			return
		}

		if cfg.Required {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
			return
		}

		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userID == "" {
			telemetry.Warn("auth.anonymous", map[string]any{
				"path":       c.Request.URL.Path,
				"request_id": RequestIDFromContext(c),
			})
			userID = AnonymousUserID
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

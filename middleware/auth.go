// middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"estuary/services/estuary"
	"estuary/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	practitionerIDKey = "practitionerID"
	authSessionKey    = "authSession"
	authSessionIDKey  = "authSessionID"
)

// SessionStore resolves the auth session a token's sid claim points at.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*utils.AuthSession, error)
}

// JWTAuthMiddleware validates the bearer token, loads the auth session it
// refers to and puts the practitioner id and upstream API token on the request.
func JWTAuthMiddleware(store SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := zap.L()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ExtractClaims(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Invalid token"})
			return
		}

		session, err := store.Get(c.Request.Context(), claims.SessionID)
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				logger.Error("Error loading auth session", zap.String("sessionID", claims.SessionID), zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Session expired, please sign in again"})
			return
		}
		if session.PractitionerID != claims.Subject {
			logger.Warn("Auth session does not match token subject",
				zap.String("sessionID", claims.SessionID), zap.String("subject", claims.Subject))
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Token mismatch"})
			return
		}

		c.Set(practitionerIDKey, session.PractitionerID)
		c.Set(authSessionKey, session)
		c.Set(authSessionIDKey, claims.SessionID)
		c.Request = c.Request.WithContext(estuary.WithToken(c.Request.Context(), session.APIToken))
		c.Next()
	}
}

// PractitionerID returns the authenticated practitioner, or "" outside the auth group.
func PractitionerID(c *gin.Context) string {
	return c.GetString(practitionerIDKey)
}

func AuthSession(c *gin.Context) *utils.AuthSession {
	if v, ok := c.Get(authSessionKey); ok {
		if s, ok := v.(*utils.AuthSession); ok {
			return s
		}
	}
	return nil
}

func AuthSessionID(c *gin.Context) string {
	return c.GetString(authSessionIDKey)
}

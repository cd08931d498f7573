package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/burrowhq/burrow/internal/core"
	"github.com/burrowhq/burrow/internal/models"
	"github.com/burrowhq/burrow/pkg/logging"
)

const (
	ctxUserID    = "user_id"
	ctxUserRole  = "user_role"
	ctxRequestID = "request_id"
)

// Claims is the access-token payload the auth middleware accepts
type Claims struct {
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// RequestID assigns each request a uuid, echoed in the X-Request-ID header
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// RequestLogger logs one line per request
func RequestLogger() gin.HandlerFunc {
	logger := logging.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", c.GetString(ctxRequestID)))
	}
}

// Recovery converts panics into a plain 500 envelope
func Recovery() gin.HandlerFunc {
	logger := logging.WithComponent("http")
	return gin.CustomRecovery(func(c *gin.Context, err interface{}) {
		logger.Error("panic recovered", zap.Any("panic", err))
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"success": false, "message": "internal server error"})
	})
}

// Auth validates the bearer access token and puts the caller's id and role
// into the request context. Tokens are minted by the external identity
// service with the shared HS256 secret.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondError(c, core.Authenticationf("missing bearer token"))
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid || claims.UserID <= 0 {
			respondError(c, core.Authenticationf("invalid or expired token"))
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin gates a route group to admin accounts. Runs after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxUserRole) != models.RoleAdmin {
			respondError(c, core.Forbiddenf("admin role required"))
			return
		}
		c.Next()
	}
}

// currentUserID returns the authenticated caller's id
func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}

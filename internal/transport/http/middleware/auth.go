package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/port"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/logger"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/security"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/repository"
)

// UserKey is the context key for the authenticated *domain.User.
const UserKey = "user"

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// TokenVerifier validates identity tokens issued by the authentication provider.
type TokenVerifier interface {
	Verify(token string) (*security.IdentityClaims, error)
}

// RequireAuth validates the Authorization header and loads the signed-in user from the directory.
func RequireAuth(verifier TokenVerifier, users port.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid authorization format: expected 'Bearer <token>'"))
			return
		}

		if !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid authorization format: must start with 'Bearer'"))
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing identity token"))
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			switch {
			case errors.Is(err, security.ErrExpiredIdentityToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "identity token expired"))
			case errors.Is(err, security.ErrInvalidIdentityToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid identity token"))
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					newErrorResponse(c, "authentication failed"))
			}
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID())
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				logger.WithContext(c.Request.Context()).Warn("identity token for unknown user",
					zap.String("email", logger.MaskEmail(claims.Email)))
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "unknown user"))
				return
			}
			logger.WithContext(c.Request.Context()).Error("failed to load signed-in user", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				newErrorResponse(c, "authentication failed"))
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(UserKey, user)

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.UserID = user.ID
		}
		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey{}, user.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetAuthenticatedUserID retrieves the user ID from context (helper for handlers)
func GetAuthenticatedUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}

	if id, ok := userID.(string); ok {
		return id, true
	}

	return "", false
}

// GetAuthenticatedUser retrieves the signed-in user loaded by RequireAuth.
func GetAuthenticatedUser(c *gin.Context) (*domain.User, bool) {
	val, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := val.(*domain.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

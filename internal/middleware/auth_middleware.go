package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/luct/reporting/internal/app/models"
	"github.com/luct/reporting/internal/app/models/dto"
	"github.com/luct/reporting/internal/pkg/apperrors"
	"github.com/luct/reporting/internal/pkg/auth"
)

const actorKey = "actor"

// AuthMiddleware for authentication
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// JWTAuth middleware for JWT token validation. It stores the caller's Actor in the context.
// Only the Authorization header is accepted.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return m.authenticate(false)
}

// WebSocketAuth is JWTAuth that also accepts a ?token= query parameter.
// Browsers cannot set headers on websocket handshakes, so mount it on the upgrade route only.
func (m *AuthMiddleware) WebSocketAuth() gin.HandlerFunc {
	return m.authenticate(true)
}

func (m *AuthMiddleware) authenticate(allowQueryToken bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" && allowQueryToken {
			authHeader = c.Query("token")
		}

		if authHeader == "" {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.APIResponse{Error: errorDetail})
			return
		}

		tokenString, err := auth.ExtractBearerToken(strings.Trim(authHeader, "\"'"))
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Invalid token format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.APIResponse{Error: errorDetail})
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			errorCode := dto.ErrorCodeInvalidToken
			errorDetails := "Invalid token"
			if errors.Is(err, apperrors.ErrTokenExpired) {
				errorCode = dto.ErrorCodeExpiredToken
				errorDetails = "Token has expired"
			}

			errorDetail := dto.NewErrorDetail(errorCode, "Authentication failed").WithDetails(errorDetails)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.APIResponse{Error: errorDetail})
			return
		}

		SetActor(c, claims.Actor())
		c.Set("userID", claims.UserID)
		c.Next()
	}
}

// GetActor returns the authenticated actor set by JWTAuth
func GetActor(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}

// SetActor stores actor on the context for GetActor
func SetActor(c *gin.Context, actor models.Actor) {
	c.Set(actorKey, actor)
}

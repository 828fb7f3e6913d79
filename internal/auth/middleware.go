package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/response"
)

var (
	ErrMissingToken  = apperror.Unauthorized("missing Authorization header")
	ErrMalformedAuth = apperror.Unauthorized("invalid Authorization header format")
	ErrInvalidToken  = apperror.Unauthorized("invalid or expired token")
)

// AuthRequired is a Gin middleware that requires "Authorization: Bearer <token>"
// and stores the token subject as the current user ID.
func AuthRequired(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		claims, err := jwtManager.ParseAndValidate(token)
		if err != nil {
			response.Error(c, ErrInvalidToken.WithCause(err))
			c.Abort()
			return
		}

		SetUserID(c, claims.Subject)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMalformedAuth
	}
	return strings.TrimSpace(token), nil
}

package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// UserIDKey is the key used to store the authenticated user ID in the context
	UserIDKey = "user_id"

	bearerPrefix = "Bearer "
)

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated user ID in the gin context
func RequireAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := userIDFromRequest(c, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Invalid or missing authentication token",
				},
			})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// OptionalAuth stores the user ID when a valid bearer token is present and
// lets the request through anonymously otherwise. Catalog reads use it to
// decorate responses with ownership without demanding a login.
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, err := userIDFromRequest(c, jwtSecret); err == nil {
			c.Set(UserIDKey, userID)
		}
		c.Next()
	}
}

// GetUserID retrieves the authenticated user ID from the gin context.
// Returns uuid.Nil and false for anonymous requests.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	if id, exists := c.Get(UserIDKey); exists {
		if userID, ok := id.(uuid.UUID); ok {
			return userID, true
		}
	}
	return uuid.Nil, false
}

func userIDFromRequest(c *gin.Context, jwtSecret string) (uuid.UUID, error) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return uuid.Nil, fmt.Errorf("missing bearer token")
	}
	tokenString := strings.TrimPrefix(header, bearerPrefix)

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("unexpected claims type")
	}
	rawUserID, ok := claims["userId"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing userId claim")
	}

	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid userId claim: %w", err)
	}
	return userID, nil
}

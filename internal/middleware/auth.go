package middleware

import (
	"backend/internal/auth"
	"backend/pkg/response"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// bearerToken extracts the compact token from the Authorization header.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// RequireScope validates the bearer token and checks that every required
// scope is granted. The check runs over prefixed authorities, mirroring
// how scopes are stored and stripped around the token boundary.
func RequireScope(issuer *auth.TokenIssuer, requiredScopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		claims, err := issuer.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		granted := make(map[string]bool, len(claims.Scope))
		for _, s := range claims.Scope {
			granted[auth.RolePrefix+s] = true
		}

		for _, required := range requiredScopes {
			if !granted[auth.RolePrefix+required] {
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: missing scope '"+required+"'"))
				return
			}
		}

		c.Set("accountID", claims.AccountID)
		c.Set("accountEmail", claims.Subject)
		c.Set("scopes", claims.Scope)

		c.Next()
	}
}

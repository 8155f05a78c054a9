package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
)

const (
	ContextActor      = "actor"
	ContextProviderID = "providerID"
	ContextRole       = "role"

	RoleOps = "ops"
)

// AuthMiddleware validates an HS256 bearer token. Claims: sub (actor),
// providerId (optional for ops), role.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "missing_authorization_header", "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "invalid_authorization_header", "expected a bearer token")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			httperr.Unauthorized(c, "invalid_token", "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			httperr.Unauthorized(c, "invalid_token_claims", "invalid token claims")
			return
		}

		actor := claimString(claims["sub"])
		role, _ := claims["role"].(string)
		providerID, hasProvider := claims["providerId"].(float64)

		if actor == "" || (!hasProvider && role != RoleOps) {
			httperr.Unauthorized(c, "invalid_token_payload", "token is missing required claims")
			return
		}

		c.Set(ContextActor, actor)
		c.Set(ContextRole, role)
		if hasProvider {
			c.Set(ContextProviderID, uint(providerID))
		}

		c.Next()
	}
}

// RequireProviderAccess lets ops through and otherwise requires the token's
// provider to match :providerId.
func RequireProviderAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) == RoleOps {
			c.Next()
			return
		}

		pathID, err := strconv.ParseUint(c.Param("providerId"), 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_provider_id", "invalid provider id")
			return
		}

		if c.GetUint(ContextProviderID) != uint(pathID) {
			httperr.Forbidden(c, "forbidden", "token does not grant access to this provider")
			return
		}

		c.Next()
	}
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != role {
			httperr.Forbidden(c, "forbidden", "insufficient role")
			return
		}
		c.Next()
	}
}

// ProviderScope is the provider a caller is limited to, or 0 for ops.
func ProviderScope(c *gin.Context) uint {
	if c.GetString(ContextRole) == RoleOps {
		return 0
	}
	return c.GetUint(ContextProviderID)
}

func Actor(c *gin.Context) string {
	if a := c.GetString(ContextActor); a != "" {
		return a
	}
	return "anonymous"
}

func claimString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	}
	return ""
}

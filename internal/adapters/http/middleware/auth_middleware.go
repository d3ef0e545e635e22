package middleware

import (
	"errors"
	"strings"

	"saeta-access/internal/config"
	"saeta-access/internal/core/domain"
	"saeta-access/internal/pkg/jwt"
	"saeta-access/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the auth middlewares
const (
	LocalUserID          = "userID"
	LocalUsername        = "username"
	LocalRole            = "role"
	LocalScannerID       = "scannerID"
	LocalScannerLocation = "scannerLocation"
)

// AuthMiddleware requires a valid operator access token
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Cookie first, then Authorization header
		accessToken := c.Cookies("access_token")
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUsername, claims.Username)
		c.Locals(LocalRole, claims.Role)

		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		if hasRole(role, allowedRoles) {
			return c.Next()
		}
		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only ADMIN role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}

// OperatorOrAdmin middleware allows OPERATOR or ADMIN roles
func OperatorOrAdmin() fiber.Handler {
	return RoleMiddleware(domain.RoleOperator, domain.RoleAdmin)
}

// SelfOrRoles lets a user reach their own resource, identified by the route
// parameter param, and lets the given roles reach any of them
func SelfOrRoles(param string, roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if hasRole(role, roles) {
			return c.Next()
		}

		target, err := c.ParamsInt(param)
		if err != nil || target <= 0 {
			return response.BadRequest(c, "Invalid user ID")
		}
		if IsSelf(c, uint(target)) {
			return c.Next()
		}
		return response.Forbidden(c, "You can only access your own resources")
	}
}

// IsSelf reports whether the authenticated user is userID
func IsSelf(c *fiber.Ctx, userID uint) bool {
	id, ok := c.Locals(LocalUserID).(uint)
	return ok && id == userID
}

// IsStaff reports whether the authenticated user is an OPERATOR or ADMIN
func IsStaff(c *fiber.Ctx) bool {
	role, _ := c.Locals(LocalRole).(string)
	return hasRole(role, []domain.Role{domain.RoleOperator, domain.RoleAdmin})
}

func hasRole(role string, allowed []domain.Role) bool {
	for _, r := range allowed {
		if role == string(r) {
			return true
		}
	}
	return false
}

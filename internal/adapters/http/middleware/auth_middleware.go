package middleware

import (
	"errors"
	"strings"

	"capex-approval/internal/core/domain"
	"capex-approval/internal/core/services"
	"capex-approval/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserLocalKey is the fiber.Ctx locals key carrying the caller identity
const UserLocalKey = "user"

// AuthMiddleware creates authentication middleware backed by an
// identity verifier
func AuthMiddleware(verifier services.IdentityVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var sessionToken string

		// 1. Try to get token from cookie first
		sessionToken = c.Cookies("session_token")

		// 2. If not in cookie, try Authorization header
		if sessionToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				sessionToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if sessionToken == "" {
			return response.Unauthorized(c, "Session token required")
		}

		// 4. Validate token
		user, err := verifier.Verify(sessionToken)
		if err != nil {
			if errors.Is(err, services.ErrTokenExpired) {
				return response.Unauthorized(c, "Session expired, please log in again")
			}
			return response.Unauthorized(c, "Invalid session token")
		}

		// 5. Set user info in context
		c.Locals(UserLocalKey, user)

		return c.Next()
	}
}

// AdminOnly middleware allows only admin users
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CallerFromCtx(c)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		if !user.IsAdmin {
			return response.Forbidden(c, "Admin role required")
		}
		return c.Next()
	}
}

// OptionalAuth doesn't require auth but sets user info if a valid
// token is present
func OptionalAuth(verifier services.IdentityVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var sessionToken string

		sessionToken = c.Cookies("session_token")
		if sessionToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				sessionToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if sessionToken != "" {
			if user, err := verifier.Verify(sessionToken); err == nil {
				c.Locals(UserLocalKey, user)
			}
		}

		return c.Next()
	}
}

// CallerFromCtx extracts the authenticated identity set by
// AuthMiddleware, nil if absent
func CallerFromCtx(c *fiber.Ctx) *domain.UserIdentity {
	user, ok := c.Locals(UserLocalKey).(*domain.UserIdentity)
	if !ok {
		return nil
	}
	return user
}

// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/amirphl/collab-market/app/dto"
	"github.com/amirphl/collab-market/app/services"
	"github.com/amirphl/collab-market/models"
	"github.com/gofiber/fiber/v3"
)

// Locals keys set by Authenticate
const (
	LocalActorID   = "actor_id"
	LocalActorRole = "actor_role"
	LocalTokenID   = "token_id"
	LocalRequestID = "request_id"
)

// AuthMiddleware handles JWT token validation for protected endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

func unauthorized(c fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: code},
	})
}

// Authenticate validates the bearer token and stores the actor in the request locals
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "MISSING_AUTHORIZATION_HEADER", "Authorization header is required")
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return unauthorized(c, "INVALID_AUTHORIZATION_FORMAT", "Invalid authorization header format. Expected 'Bearer <token>'")
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return unauthorized(c, "MISSING_ACCESS_TOKEN", "Access token is required")
		}

		claims, err := m.tokenService.ValidateToken(token)
		if err != nil {
			if errors.Is(err, services.ErrTokenExpired) {
				return unauthorized(c, "TOKEN_EXPIRED", "Access token has expired")
			}
			return unauthorized(c, "TOKEN_INVALID", "Invalid access token")
		}

		c.Locals(LocalActorID, claims.ActorID)
		c.Locals(LocalActorRole, claims.Role)
		c.Locals(LocalTokenID, claims.TokenID)

		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals(LocalRequestID, requestID)
		}

		return c.Next()
	}
}

// RequireRole rejects actors whose role is not in roles. Must run after Authenticate.
func RequireRole(roles ...models.RecipientType) fiber.Handler {
	return func(c fiber.Ctx) error {
		role, _ := c.Locals(LocalActorRole).(models.RecipientType)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.APIResponse{
			Success: false,
			Message: "This endpoint is not available for your account type",
			Error:   dto.ErrorDetail{Code: "ROLE_NOT_ALLOWED"},
		})
	}
}

// ActorFromLocals returns the authenticated actor, if any
func ActorFromLocals(c fiber.Ctx) (models.RecipientType, uint, bool) {
	role, ok := c.Locals(LocalActorRole).(models.RecipientType)
	if !ok {
		return "", 0, false
	}
	id, ok := c.Locals(LocalActorID).(uint)
	if !ok || id == 0 {
		return "", 0, false
	}
	return role, id, true
}

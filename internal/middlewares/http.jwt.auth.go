package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	sharedjwt "github.com/joshuarp/taskguard-api/internal/shared/jwt"
)

const (
	LocalUserID    = "user_id"
	LocalJWTClaims = "jwt_claims"
)

func NewHTTPJWTMiddleware(tokenManager sharedjwt.TokenManager) fiber.Handler {
	return func(c fiber.Ctx) error {
		authorizationHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		parts := strings.SplitN(authorizationHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid authorization header",
			})
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		claims, err := tokenManager.Verify(c.Context(), tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token",
			})
		}

		c.Locals(LocalUserID, claims.Subject)
		c.Locals(LocalJWTClaims, claims)
		c.SetContext(sharedjwt.SetClaims(c.Context(), claims))
		return c.Next()
	}
}

// RequireScope rejects requests whose token does not grant scope. It must run
// after NewHTTPJWTMiddleware.
func RequireScope(scope string) fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, _ := c.Locals(LocalJWTClaims).(*sharedjwt.Claims)
		if claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing authenticated principal",
			})
		}
		if !claims.HasScope(scope) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":          "insufficient scope",
				"required_scope": scope,
			})
		}
		return c.Next()
	}
}

func UserIDFromContext(c fiber.Ctx) string {
	userID, _ := c.Locals(LocalUserID).(string)
	return userID
}

package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

// principalLocalKey is the fiber locals key the authenticated user id is
// stored under for downstream handlers.
const principalLocalKey = "principalID"

const sessionCookieName = "__session"

// TokenVerifier validates a session token and returns the principal id.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// publicRoutePrefixes are reachable without a session. Everything else
// requires an authenticated principal.
var publicRoutePrefixes = []string{"/sign-in", "/sign-up"}

func isPublicRoute(path string) bool {
	if path == "/" || path == "/health" {
		return true
	}

	for _, prefix := range publicRoutePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}

// SessionMiddleware resolves the principal from request credentials and
// gates every route: public routes pass unauthenticated, authenticated users
// are redirected off public routes (except the root), and protected routes
// without a valid session are rejected.
func SessionMiddleware(verifier TokenVerifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		principalID := resolvePrincipal(c, verifier)

		if isPublicRoute(c.Path()) {
			if principalID != "" && c.Path() != "/" && c.Path() != "/health" {
				return c.Redirect().To("/dashboard")
			}
			return c.Next()
		}

		if principalID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		c.Locals(principalLocalKey, principalID)

		return c.Next()
	}
}

// PrincipalID returns the authenticated user id stored by SessionMiddleware,
// or an empty string on public routes.
func PrincipalID(c fiber.Ctx) string {
	principalID, _ := c.Locals(principalLocalKey).(string)
	return principalID
}

func resolvePrincipal(c fiber.Ctx, verifier TokenVerifier) string {
	token := c.Cookies(sessionCookieName)

	if token == "" {
		header := c.Get(fiber.HeaderAuthorization)
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}

	if token == "" {
		return ""
	}

	principalID, err := verifier.VerifyToken(token)
	if err != nil {
		log.Debug().Err(err).Str("path", c.Path()).Msg("Rejected session token")
		return ""
	}

	return principalID
}

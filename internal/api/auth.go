package api

import (
	"fmt"
	"net/http"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/golang-jwt/jwt/v5"

	"chat-eats-backend/internal/models"
)

// IssueToken signs a token for the chat gateway to use on behalf of a user.
// Claims carry the user id and role; role changes require a new token.
func IssueToken(secret string, user *models.User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"exp":  time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("api.IssueToken: %w", err)
	}
	return signed, nil
}

// Middleware validates the bearer token and stores the parsed token under the
// default "user" context key.
func Middleware(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
	})
}

func claims(c echo.Context) (jwt.MapClaims, bool) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, false
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	return mc, ok
}

// ActorID extracts the authenticated user's id from the token claims.
func ActorID(c echo.Context) (int64, bool) {
	mc, ok := claims(c)
	if !ok {
		return 0, false
	}
	sub, ok := mc["sub"].(float64)
	if !ok {
		return 0, false
	}
	return int64(sub), true
}

// ActorRole extracts the authenticated user's role from the token claims.
func ActorRole(c echo.Context) (models.Role, bool) {
	mc, ok := claims(c)
	if !ok {
		return "", false
	}
	role, ok := mc["role"].(string)
	if !ok {
		return "", false
	}
	return models.Role(role), true
}

// RequireRole rejects requests whose token does not carry one of the allowed
// roles. Gating happens here so services stay role-agnostic.
func RequireRole(allowed ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := ActorRole(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
			}
			for _, a := range allowed {
				if role == a {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "insufficient role"})
		}
	}
}

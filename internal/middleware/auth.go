package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"adventure-server/internal/models"
)

// PlayerContextKey is the echo context key holding the authenticated
// player id (the token subject).
const PlayerContextKey = "player_id"

// JWTAuth returns Echo middleware validating a Bearer token signed with
// the shared HMAC secret and exposing its subject on the context.
func JWTAuth(secret string, logger *zap.Logger) echo.MiddlewareFunc {
	log := logger.Named("JWTAuth")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				log.Warn("Authorization header missing", zap.String("path", c.Path()))
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				log.Warn("Malformed Authorization header", zap.String("path", c.Path()))
				return echo.NewHTTPError(http.StatusUnauthorized, "malformed token header")
			}

			token, err := jwt.Parse(parts[1], func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, models.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				msg := "invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					msg = "token expired"
				}
				log.Warn("Token verification failed", zap.String("path", c.Path()), zap.Error(err))
				return echo.NewHTTPError(http.StatusUnauthorized, msg)
			}

			subject, err := token.Claims.GetSubject()
			if err != nil || subject == "" {
				log.Warn("Token has no subject", zap.String("path", c.Path()))
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(PlayerContextKey, subject)
			return next(c)
		}
	}
}

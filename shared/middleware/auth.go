package middleware

import (
	"context"
	"net/http"
	"strings"

	"gamebook-server/shared/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TokenVerifier - функция проверки токена пользователя.
// Совместима с authutils.JWTVerifier.VerifyToken.
type TokenVerifier func(ctx context.Context, tokenString string) (*models.Claims, error)

// Auth создает echo middleware для проверки JWT access токена.
// Проверяет подпись и срок действия, кладет UserID в контекст запроса
// под ключом models.UserContextKey.
func Auth(verify TokenVerifier, logger *zap.Logger) echo.MiddlewareFunc {
	log := logger.Named("AuthMiddleware")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header missing")
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			claims, err := verify(c.Request().Context(), parts[1])
			if err != nil {
				log.Debug("Token verification failed", zap.Error(err))
				switch err {
				case models.ErrTokenExpired:
					return echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
				case models.ErrTokenMalformed:
					return echo.NewHTTPError(http.StatusUnauthorized, "Token is malformed")
				default:
					return echo.NewHTTPError(http.StatusUnauthorized, "Token is invalid")
				}
			}

			ctx := context.WithValue(c.Request().Context(), models.UserContextKey, claims.UserID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// InterServiceAuth создает echo middleware для внутренних маршрутов.
// Сравнивает заголовок X-Internal-Service-Token с общим секретом.
func InterServiceAuth(serviceToken string, logger *zap.Logger) echo.MiddlewareFunc {
	log := logger.Named("InterServiceAuthMiddleware")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get("X-Internal-Service-Token")
			if token == "" || token != serviceToken {
				log.Warn("Rejected internal request with bad service token",
					zap.String("remote_ip", c.RealIP()),
					zap.String("uri", c.Request().RequestURI))
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid service token")
			}
			return next(c)
		}
	}
}

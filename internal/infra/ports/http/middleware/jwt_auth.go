package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomRelay/internal/infra/appctx"
	"github.com/qrave1/RoomRelay/internal/infra/ports/http/dto"
)

const (
	// AdminAudience - aud токенов для служебных ручек
	AdminAudience = "roomrelay-admin"

	cookieName = "jwt"
)

// AdminAuthMiddleware проверяет токен из Authorization: Bearer или cookie jwt.
// С пустым secret проверка отключена.
func AdminAuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if secret == "" {
			return next
		}

		return func(c echo.Context) error {
			raw := bearerToken(c.Request())
			if raw == "" {
				cookie, err := c.Cookie(cookieName)
				if err != nil {
					return c.JSON(http.StatusUnauthorized, dto.Fail("missing or malformed jwt"))
				}
				raw = cookie.Value
			}

			token, err := jwt.ParseWithClaims(
				raw,
				&jwt.RegisteredClaims{},
				func(token *jwt.Token) (any, error) {
					return []byte(secret), nil
				},
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
				jwt.WithAudience(AdminAudience),
			)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, dto.Fail("invalid or expired jwt"))
			}

			claims, ok := token.Claims.(*jwt.RegisteredClaims)
			if !ok || !token.Valid || claims.Subject == "" {
				return c.JSON(http.StatusUnauthorized, dto.Fail("invalid subject"))
			}

			c.SetRequest(
				c.Request().WithContext(
					appctx.WithOperator(c.Request().Context(), claims.Subject),
				),
			)

			return next(c)
		}
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get(echo.HeaderAuthorization)

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}

	return strings.TrimSpace(token)
}

// NewAdminToken подписывает токен для служебных ручек
func NewAdminToken(secret, subject string, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{AdminAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

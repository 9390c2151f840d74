package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/RoomRelay/internal/infra/appctx"
)

const testSecret = "admin-secret"

func serveAdmin(t *testing.T, secret string, setup func(r *http.Request)) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var operator string

	e := echo.New()
	e.GET("/admin", func(c echo.Context) error {
		operator, _ = appctx.Operator(c.Request().Context())
		return c.NoContent(http.StatusOK)
	}, AdminAuthMiddleware(secret))

	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if setup != nil {
		setup(r)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, r)

	return rec, operator
}

func bearer(token string) func(r *http.Request) {
	return func(r *http.Request) {
		r.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
}

func TestAdminAuth_ValidBearerSetsOperator(t *testing.T) {
	req := require.New(t)

	token, err := NewAdminToken(testSecret, "ops", time.Now(), time.Hour)
	req.NoError(err)

	rec, operator := serveAdmin(t, testSecret, bearer(token))

	req.Equal(http.StatusOK, rec.Code)
	req.Equal("ops", operator)
}

func TestAdminAuth_CookieToken(t *testing.T) {
	req := require.New(t)

	token, err := NewAdminToken(testSecret, "ops", time.Now(), time.Hour)
	req.NoError(err)

	rec, _ := serveAdmin(t, testSecret, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	})

	req.Equal(http.StatusOK, rec.Code)
}

func TestAdminAuth_Rejects(t *testing.T) {
	now := time.Now()

	expired, err := NewAdminToken(testSecret, "ops", now.Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	noSubject, err := NewAdminToken(testSecret, "", now, time.Hour)
	require.NoError(t, err)

	otherAudience, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "ops",
		Audience:  jwt.ClaimStrings{"someone-else"},
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	otherAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "ops",
		Audience:  jwt.ClaimStrings{AdminAudience},
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	cases := map[string]func(r *http.Request){
		"missing":        nil,
		"not bearer":     func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Basic abc") },
		"expired":        bearer(expired),
		"no subject":     bearer(noSubject),
		"other audience": bearer(otherAudience),
		"other alg":      bearer(otherAlg),
	}

	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			rec, operator := serveAdmin(t, testSecret, setup)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Empty(t, operator)
		})
	}
}

func TestAdminAuth_EmptySecretDisablesCheck(t *testing.T) {
	rec, _ := serveAdmin(t, "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
}

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"resource-server/internal/authz"
	"resource-server/internal/services"
	apperrors "resource-server/pkg/errors"
	"resource-server/pkg/metrics"
	"resource-server/pkg/service/mocks"
	"resource-server/pkg/utils"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testIssuer = "https://sso.example.com/realms/demo"

// fakeJWTService принимает токены из карты token -> claims.
type fakeJWTService struct {
	tokens map[string]jwt.MapClaims
}

func (f *fakeJWTService) ValidateToken(_ context.Context, token string) (jwt.MapClaims, error) {
	if c, ok := f.tokens[token]; ok {
		return c, nil
	}
	return nil, apperrors.ErrUnauthenticated
}

func (f *fakeJWTService) Issuer() string { return testIssuer }

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	logger := zap.NewNop()

	jwtSvc := &fakeJWTService{tokens: map[string]jwt.MapClaims{
		"user-token": {
			"sub":                "u-1",
			"preferred_username": "jdoe",
			"realm_access":       map[string]interface{}{"roles": []interface{}{"USER"}},
		},
		"plain-token": {"sub": "u-2"},
	}}

	authMW := NewAuthMiddleware(
		jwtSvc,
		services.NewUserService(logger),
		authz.NewGatekeeper(authz.DefaultRules()...),
		metrics.New("test"),
		logger,
	)

	e := echo.New()
	e.HTTPErrorHandler = utils.HTTPErrorHandler(logger)
	e.Use(authMW.Auth)

	ok := func(c echo.Context) error {
		profile, err := utils.GetProfileFromContext(c.Request().Context())
		if err != nil {
			return c.String(http.StatusOK, "anonymous")
		}
		return c.String(http.StatusOK, profile.Username)
	}
	e.GET("/api/health", ok)
	e.GET("/api/user/profile", ok)
	e.GET("/api/protected/data", ok)
	e.GET("/api/admin/stats", ok)
	return e
}

func doRequest(e *echo.Echo, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	e := newTestServer(t)

	tests := []struct {
		name        string
		path        string
		auth        string
		wantCode    int
		wantBody    string
		wantMessage string
		wantWWWAuth string
	}{
		{
			name:     "public path without token",
			path:     "/api/health",
			wantCode: http.StatusOK,
			wantBody: "anonymous",
		},
		{
			name:     "public path ignores invalid token",
			path:     "/api/health",
			auth:     "Bearer broken",
			wantCode: http.StatusOK,
			wantBody: "anonymous",
		},
		{
			name:        "protected path without token",
			path:        "/api/protected/data",
			wantCode:    http.StatusUnauthorized,
			wantMessage: "Authentication required",
			wantWWWAuth: `Bearer realm="` + testIssuer + `"`,
		},
		{
			name:        "protected path with invalid token",
			path:        "/api/protected/data",
			auth:        "Bearer broken",
			wantCode:    http.StatusUnauthorized,
			wantMessage: "Authentication required",
			wantWWWAuth: `Bearer realm="` + testIssuer + `", error="invalid_token"`,
		},
		{
			name:        "wrong scheme",
			path:        "/api/protected/data",
			auth:        "Basic dXNlcjpwYXNz",
			wantCode:    http.StatusUnauthorized,
			wantMessage: "Authentication required",
			wantWWWAuth: `Bearer realm="` + testIssuer + `", error="invalid_token"`,
		},
		{
			name:     "protected path with any valid token",
			path:     "/api/protected/data",
			auth:     "Bearer plain-token",
			wantCode: http.StatusOK,
		},
		{
			name:     "user path with USER role",
			path:     "/api/user/profile",
			auth:     "Bearer user-token",
			wantCode: http.StatusOK,
			wantBody: "jdoe",
		},
		{
			name:        "user path without USER role",
			path:        "/api/user/profile",
			auth:        "Bearer plain-token",
			wantCode:    http.StatusForbidden,
			wantMessage: "Access denied",
		},
		{
			name:        "admin path for USER",
			path:        "/api/admin/stats",
			auth:        "bearer user-token",
			wantCode:    http.StatusForbidden,
			wantMessage: "Access denied",
		},
		{
			name:        "unknown path without token",
			path:        "/random/path",
			wantCode:    http.StatusUnauthorized,
			wantMessage: "Authentication required",
			wantWWWAuth: `Bearer realm="` + testIssuer + `"`,
		},
		{
			name:        "unknown path with token reaches router",
			path:        "/random/path",
			auth:        "Bearer plain-token",
			wantCode:    http.StatusNotFound,
			wantMessage: "Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(e, tt.path, tt.auth)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantMessage != "" {
				var env envelope
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
				assert.False(t, env.Success)
				assert.Equal(t, tt.wantMessage, env.Message)
				assert.Empty(t, env.Data)
			}
			assert.Equal(t, tt.wantWWWAuth, rec.Header().Get(echo.HeaderWWWAuthenticate))
		})
	}
}

func TestBearerToken(t *testing.T) {
	tok, err := bearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	for _, h := range []string{"Bearer", "Bearer   ", "Token abc", "abc"} {
		_, err := bearerToken(h)
		assert.ErrorIs(t, err, apperrors.ErrInvalidAuthHeader, h)
	}
}

func TestAuthMiddleware_ValidatorCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	jwtSvc := mocks.NewMockJWTService(ctrl)
	logger := zap.NewNop()

	authMW := NewAuthMiddleware(
		jwtSvc,
		services.NewUserService(logger),
		authz.NewGatekeeper(authz.DefaultRules()...),
		nil,
		logger,
	)

	e := echo.New()
	e.HTTPErrorHandler = utils.HTTPErrorHandler(logger)
	e.Use(authMW.Auth)
	e.GET("/api/protected/data", func(c echo.Context) error {
		profile, err := utils.GetProfileFromContext(c.Request().Context())
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, profile.ID)
	})

	// без заголовка валидатор не вызывается, нужен только issuer для WWW-Authenticate
	jwtSvc.EXPECT().Issuer().Return("").Times(1)
	rec := doRequest(e, "/api/protected/data", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))

	jwtSvc.EXPECT().
		ValidateToken(gomock.Any(), "abc.def.ghi").
		Return(jwt.MapClaims{"sub": "u-9"}, nil).
		Times(1)
	rec = doRequest(e, "/api/protected/data", "Bearer  abc.def.ghi ")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-9", rec.Body.String())
}

func TestAuthMiddleware_IgnoredTokenLoggedOnlyOnPublicPath(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	authMW := NewAuthMiddleware(
		&fakeJWTService{},
		services.NewUserService(zap.NewNop()),
		authz.NewGatekeeper(authz.DefaultRules()...),
		nil,
		logger,
	)
	e := echo.New()
	e.HTTPErrorHandler = utils.HTTPErrorHandler(zap.NewNop())
	e.Use(authMW.Auth)
	e.GET("/api/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/api/protected/data", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := doRequest(e, "/api/health", "Bearer broken")
	require.Equal(t, http.StatusOK, rec.Code)
	ignored := logs.FilterMessageSnippet("проигнорирован").All()
	require.Len(t, ignored, 1)
	assert.Equal(t, zapcore.DebugLevel, ignored[0].Level)
	assert.Equal(t, "/api/health", ignored[0].ContextMap()["path"])

	rec = doRequest(e, "/api/protected/data", "Bearer broken")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Len(t, logs.FilterMessageSnippet("проигнорирован").All(), 1)
}

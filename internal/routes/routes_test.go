package routes

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resource-server/pkg/config"
	"resource-server/pkg/metrics"
	"resource-server/pkg/middleware"
	"resource-server/pkg/service"
	"resource-server/pkg/utils"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

const (
	testKeyID    = "routes-key"
	testAudience = "demo-backend"
)

// RouterTestSuite поднимает весь стек маршрутов против локального IdP.
type RouterTestSuite struct {
	suite.Suite
	Echo       *echo.Echo
	IdP        *httptest.Server
	PrivateKey *rsa.PrivateKey
	cancel     context.CancelFunc
}

func (s *RouterTestSuite) SetupSuite() {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	s.Require().NoError(err)
	s.PrivateKey = privateKey

	key, err := jwk.Import(&privateKey.PublicKey)
	s.Require().NoError(err)
	s.Require().NoError(key.Set(jwk.KeyIDKey, testKeyID))
	s.Require().NoError(key.Set(jwk.AlgorithmKey, "RS256"))
	keySet := jwk.NewSet()
	s.Require().NoError(keySet.AddKey(key))

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"issuer":   s.IdP.URL,
			"jwks_uri": s.IdP.URL + "/protocol/openid-connect/certs",
		})
	})
	mux.HandleFunc("/protocol/openid-connect/certs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(keySet)
	})
	s.IdP = httptest.NewServer(mux)

	s.T().Setenv("OIDC_ISSUER_URI", s.IdP.URL)
	s.T().Setenv("OIDC_AUDIENCE", testAudience)
	cfg, err := config.FromEnv()
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	logger := zap.NewNop()
	jwtSvc, err := service.NewJWTService(ctx, service.JWTConfig{
		IssuerURI: cfg.OIDC.IssuerURI,
		JWKSURI:   cfg.OIDC.JWKSURI,
		Audience:  cfg.OIDC.Audience,
		Leeway:    cfg.OIDC.ClockSkew,
	}, logger)
	s.Require().NoError(err)

	m := metrics.New(cfg.App.Name)

	e := echo.New()
	e.HTTPErrorHandler = utils.HTTPErrorHandler(logger)
	e.Use(middleware.RequestID(), middleware.InjectLogger(logger), middleware.CORS(cfg.CORS), m.Middleware())
	InitRouter(e, jwtSvc, m, logger, cfg)
	s.Echo = e
}

func (s *RouterTestSuite) TearDownSuite() {
	s.cancel()
	s.IdP.Close()
}

func (s *RouterTestSuite) token(roles ...string) string {
	claims := jwt.MapClaims{
		"iss":                s.IdP.URL,
		"aud":                testAudience,
		"sub":                "f3b1c0de-0000-4000-8000-000000000001",
		"preferred_username": "jdoe",
		"given_name":         "John",
		"family_name":        "Doe",
		"exp":                time.Now().Add(time.Hour).Unix(),
		"iat":                time.Now().Unix(),
		"realm_access":       map[string]interface{}{"roles": roles},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = testKeyID
	signed, err := tok.SignedString(s.PrivateKey)
	s.Require().NoError(err)
	return signed
}

func (s *RouterTestSuite) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func (s *RouterTestSuite) decode(rec *httptest.ResponseRecorder) envelope {
	var env envelope
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func (s *RouterTestSuite) TestHealthIsPublic() {
	rec := s.do(http.MethodGet, "/api/health", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	env := s.decode(rec)
	s.True(env.Success)
	s.Equal("Application is healthy", env.Message)
	s.Equal("UP", env.Data["status"])
	s.Equal("keycloak-demo-backend", env.Data["application"])
	s.NotEmpty(rec.Header().Get(echo.HeaderXRequestID))
}

func (s *RouterTestSuite) TestActuatorIsPublic() {
	rec := s.do(http.MethodGet, "/actuator/health", "")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"UP"}`, rec.Body.String())

	s.do(http.MethodGet, "/api/health", "")
	rec = s.do(http.MethodGet, "/actuator/prometheus", "")
	s.Equal(http.StatusOK, rec.Code)
	s.True(strings.Contains(rec.Body.String(), `route="/api/health"`))
}

func (s *RouterTestSuite) TestProfileRequiresToken() {
	rec := s.do(http.MethodGet, "/api/user/profile", "")
	s.Require().Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("Authentication required", s.decode(rec).Message)
	s.True(strings.HasPrefix(rec.Header().Get(echo.HeaderWWWAuthenticate), "Bearer realm="))
}

func (s *RouterTestSuite) TestProfileRequiresUserRole() {
	rec := s.do(http.MethodGet, "/api/user/profile", s.token("OTHER"))
	s.Require().Equal(http.StatusForbidden, rec.Code)
	s.Equal("Access denied", s.decode(rec).Message)
}

func (s *RouterTestSuite) TestProfile() {
	rec := s.do(http.MethodGet, "/api/user/profile", s.token("USER", "ADMIN"))
	s.Require().Equal(http.StatusOK, rec.Code)

	env := s.decode(rec)
	s.Equal("User profile retrieved successfully", env.Message)
	s.Equal("jdoe", env.Data["username"])
	s.Equal("John", env.Data["firstName"])
	s.Equal([]interface{}{"ADMIN", "USER"}, env.Data["roles"])
	s.NotContains(env.Data, "email")
}

func (s *RouterTestSuite) TestProtectedData() {
	rec := s.do(http.MethodGet, "/api/protected/data", s.token())
	s.Require().Equal(http.StatusOK, rec.Code)

	env := s.decode(rec)
	s.Equal("Protected data retrieved successfully", env.Message)
	s.Equal("AUTHENTICATED_USER", env.Data["accessLevel"])
	s.Equal([]interface{}{}, env.Data["authorities"])
}

func (s *RouterTestSuite) TestProtectedTime() {
	rec := s.do(http.MethodGet, "/api/protected/time", s.token("USER"))
	s.Require().Equal(http.StatusOK, rec.Code)

	env := s.decode(rec)
	s.Equal("Server time retrieved successfully", env.Message)
	s.Equal("f3b1c0de-0000-4000-8000-000000000001", env.Data["requestedBy"])
}

func (s *RouterTestSuite) TestInvalidToken() {
	rec := s.do(http.MethodGet, "/api/protected/data", "not.a.jwt")
	s.Require().Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Header().Get(echo.HeaderWWWAuthenticate), `error="invalid_token"`)
}

func (s *RouterTestSuite) TestAdminRequiresAdminRole() {
	rec := s.do(http.MethodGet, "/api/admin/anything", s.token("USER"))
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/api/admin/anything", s.token("ADMIN"))
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *RouterTestSuite) TestUnknownPath() {
	rec := s.do(http.MethodGet, "/random/path", "")
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/error", "")
	s.Equal(http.StatusNotFound, rec.Code)
	s.False(s.decode(rec).Success)
}

func (s *RouterTestSuite) TestMethodNotAllowed() {
	rec := s.do(http.MethodPost, "/api/health", "")
	s.Equal(http.StatusMethodNotAllowed, rec.Code)
	s.Equal("Method Not Allowed", s.decode(rec).Message)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

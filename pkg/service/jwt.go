package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "resource-server/pkg/errors"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"go.uber.org/zap"
)

// Алгоритмы, которые выпускает Keycloak для access token.
var allowedSigningMethods = []string{"RS256", "RS384", "RS512", "PS256", "PS384", "PS512", "ES256", "ES384", "ES512"}

//go:generate mockgen -destination=mocks/mock_jwt.go -package=mocks -source=jwt.go JWTService

// JWTService проверяет access token, выпущенный внешним провайдером (IdP).
type JWTService interface {
	ValidateToken(ctx context.Context, tokenString string) (jwt.MapClaims, error)
	Issuer() string
}

type JWTConfig struct {
	// IssuerURI - issuer провайдера, например https://sso.example.com/realms/demo
	IssuerURI string
	// JWKSURI - адрес набора ключей. Если пуст, берётся из OIDC discovery по IssuerURI.
	JWKSURI string
	// Audience - ожидаемый aud. Пустой - не проверяется.
	Audience string
	// Leeway - допуск по времени для exp/nbf/iat.
	Leeway time.Duration

	HTTPClient *http.Client
}

type oidcDiscoveryDocument struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

type jwtService struct {
	issuer   string
	audience string
	leeway   time.Duration
	jwksURL  string
	cache    *jwk.Cache
	logger   *zap.Logger

	registerMu sync.Mutex
	registered bool
}

// NewJWTService создаёт валидатор. ctx ограничивает жизнь фонового обновления ключей.
func NewJWTService(ctx context.Context, cfg JWTConfig, logger *zap.Logger) (JWTService, error) {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	jwksURL := cfg.JWKSURI
	if jwksURL == "" && cfg.IssuerURI != "" {
		doc, err := discoverOIDCConfiguration(ctx, client, cfg.IssuerURI)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrFailedToDiscoverOIDC, err)
		}
		jwksURL = doc.JWKSURI
	}
	if jwksURL == "" {
		return nil, apperrors.ErrMissingIssuerAndJWKSURL
	}

	cache, err := jwk.NewCache(ctx, httprc.NewClient(httprc.WithHTTPClient(client)))
	if err != nil {
		return nil, fmt.Errorf("не удалось создать кэш JWKS: %w", err)
	}

	logger.Info("JWTService: валидатор токенов настроен",
		zap.String("issuer", cfg.IssuerURI),
		zap.String("jwks_uri", jwksURL),
		zap.String("audience", cfg.Audience),
	)

	return &jwtService{
		issuer:   cfg.IssuerURI,
		audience: cfg.Audience,
		leeway:   cfg.Leeway,
		jwksURL:  jwksURL,
		cache:    cache,
		logger:   logger,
	}, nil
}

func (s *jwtService) Issuer() string { return s.issuer }

func discoverOIDCConfiguration(ctx context.Context, client *http.Client, issuer string) (*oidcDiscoveryDocument, error) {
	wellKnownURL := strings.TrimSuffix(issuer, "/") + "/.well-known/openid-configuration"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wellKnownURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch OIDC configuration: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OIDC discovery endpoint returned status %d", resp.StatusCode)
	}

	var doc oidcDiscoveryDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode OIDC configuration: %w", err)
	}
	if doc.JWKSURI == "" {
		return nil, errors.New("OIDC configuration missing jwks_uri")
	}
	return &doc, nil
}

// ensureRegistered регистрирует JWKS URL в кэше при первом использовании,
// чтобы недоступный IdP не блокировал старт сервера.
func (s *jwtService) ensureRegistered(ctx context.Context) error {
	s.registerMu.Lock()
	defer s.registerMu.Unlock()

	if s.registered {
		return nil
	}

	regCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.cache.Register(regCtx, s.jwksURL); err != nil {
		// повторим на следующем запросе
		return fmt.Errorf("failed to register JWKS URL: %w", err)
	}
	s.registered = true
	return nil
}

func (s *jwtService) keyFunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if err := s.ensureRegistered(ctx); err != nil {
			return nil, err
		}

		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("token header missing kid")
		}

		keySet, err := s.cache.Lookup(ctx, s.jwksURL)
		if err != nil {
			return nil, fmt.Errorf("failed to lookup JWKS: %w", err)
		}

		key, found := keySet.LookupKeyID(kid)
		if !found {
			return nil, fmt.Errorf("key ID %s not found in JWKS", kid)
		}

		var rawKey interface{}
		if err := jwk.Export(key, &rawKey); err != nil {
			return nil, fmt.Errorf("failed to export raw key: %w", err)
		}
		return rawKey, nil
	}
}

// ValidateToken проверяет подпись, issuer, audience и срок действия.
// Все ошибки оборачивают apperrors.ErrUnauthenticated.
func (s *jwtService) ValidateToken(ctx context.Context, tokenString string) (jwt.MapClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(allowedSigningMethods),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(s.leeway),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc(ctx), opts...)
	if err != nil {
		s.logger.Debug("ValidateToken: токен отклонён", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, classify(err))
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, apperrors.ErrInvalidToken)
	}

	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return apperrors.ErrInvalidIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return apperrors.ErrInvalidAudience
	default:
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
}

package middleware

import (
	"fmt"
	"strings"

	"resource-server/internal/authz"
	"resource-server/internal/claims"
	"resource-server/internal/services"
	apperrors "resource-server/pkg/errors"
	"resource-server/pkg/metrics"
	"resource-server/pkg/service"
	"resource-server/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthMiddleware struct {
	jwtService  service.JWTService
	userService services.UserServiceInterface
	gatekeeper  *authz.Gatekeeper
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewAuthMiddleware(
	jwtSvc service.JWTService,
	userService services.UserServiceInterface,
	gatekeeper *authz.Gatekeeper,
	m *metrics.Metrics,
	logger *zap.Logger,
) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtSvc,
		userService: userService,
		gatekeeper:  gatekeeper,
		metrics:     m,
		logger:      logger,
	}
}

// Auth - основная функция middleware.
// Токен проверяется, если он передан; решение о доступе принимает таблица правил.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()

		// 1. Пытаемся аутентифицировать запрос
		var subject authz.Subject
		authErr := apperrors.ErrEmptyAuthHeader
		tokenSupplied := false

		if authHeader := req.Header.Get(echo.HeaderAuthorization); authHeader != "" {
			tokenSupplied = true
			tokenString, err := bearerToken(authHeader)
			if err != nil {
				authErr = err
			} else if set, err := m.authenticate(c, tokenString); err != nil {
				authErr = err
			} else {
				profile, err := m.userService.ExtractProfile(set)
				if err != nil {
					return utils.ErrorResponse(c, err, m.logger)
				}
				ctx := utils.WithProfile(utils.WithClaims(req.Context(), set), profile)
				c.SetRequest(req.WithContext(ctx))
				subject = profile
				authErr = nil
			}
		}

		// 2. Сверяемся с таблицей правил
		path := c.Request().URL.Path
		decision := m.gatekeeper.Authorize(path, req.Method, subject)
		m.metrics.ObserveDecision(decision.Allowed, decision.Reason.String())

		if decision.Allowed {
			if authErr != nil && tokenSupplied && m.gatekeeper.IsPublic(path) {
				m.logger.Debug("AuthMiddleware: невалидный токен на публичном пути проигнорирован",
					zap.String("path", path), zap.Error(authErr))
			}
			return next(c)
		}

		switch decision.Reason {
		case authz.ReasonUnauthenticated:
			m.logger.Warn("AuthMiddleware: требуется аутентификация",
				zap.String("path", path),
				zap.String("requirement", decision.Requirement.String()),
				zap.Error(authErr),
			)
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, m.wwwAuthenticate(tokenSupplied))
			return utils.ErrorResponse(c, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, authErr), m.logger)
		default:
			m.logger.Warn("AuthMiddleware: доступ запрещён",
				zap.String("path", path),
				zap.String("requirement", decision.Requirement.String()),
			)
			return utils.ErrorResponse(c, apperrors.ErrForbidden, m.logger)
		}
	}
}

func (m *AuthMiddleware) authenticate(c echo.Context, tokenString string) (*claims.Set, error) {
	raw, err := m.jwtService.ValidateToken(c.Request().Context(), tokenString)
	if err != nil {
		return nil, err
	}
	return claims.NewSet(raw), nil
}

// bearerToken проверяет формат заголовка "Bearer <token>".
func bearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperrors.ErrInvalidAuthHeader
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", apperrors.ErrInvalidAuthHeader
	}
	return token, nil
}

// wwwAuthenticate - значение заголовка по RFC 6750.
func (m *AuthMiddleware) wwwAuthenticate(tokenSupplied bool) string {
	var parts []string
	if issuer := m.jwtService.Issuer(); issuer != "" {
		parts = append(parts, fmt.Sprintf(`realm="%s"`, strings.ReplaceAll(issuer, `"`, `\"`)))
	}
	if tokenSupplied {
		parts = append(parts, `error="invalid_token"`)
	}
	if len(parts) == 0 {
		return "Bearer"
	}
	return "Bearer " + strings.Join(parts, ", ")
}

package errors

import (
	"errors"
	"fmt"
)

var (
	// Токены и заголовок Authorization
	ErrEmptyAuthHeader   = errors.New("authorization header is missing")
	ErrInvalidAuthHeader = errors.New("authorization header must use the Bearer scheme")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrInvalidIssuer     = errors.New("invalid issuer")
	ErrInvalidAudience   = errors.New("invalid audience")

	// OIDC / JWKS
	ErrMissingIssuerAndJWKSURL = errors.New("either issuer or JWKS URL must be provided")
	ErrFailedToDiscoverOIDC    = errors.New("failed to discover OIDC configuration")

	// Авторизация
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access denied")

	// Контекст
	ErrProfileNotFoundInContext = errors.New("user profile not found in request context")
)

// InvalidArgumentError - переданный вызывающей стороной аргумент некорректен.
// Отдаётся клиенту как 400 с текстом Detail.
type InvalidArgumentError struct {
	Detail string
}

func (e *InvalidArgumentError) Error() string { return e.Detail }

func NewInvalidArgumentError(format string, args ...interface{}) error {
	return &InvalidArgumentError{Detail: fmt.Sprintf(format, args...)}
}

// ErrInvalidPrincipal возвращается, когда principal не является проверенным набором claims.
var ErrInvalidPrincipal = NewInvalidArgumentError("Authentication principal is not a JWT token")

// HttpError несёт готовую пару статус/сообщение. Err и Context пишутся только в лог.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{
		Code:    code,
		Message: message,
		Err:     err,
		Context: context,
	}
}

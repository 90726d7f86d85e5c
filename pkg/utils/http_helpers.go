package utils

import (
	"errors"
	"fmt"
	"net/http"

	"resource-server/pkg/api"
	apperrors "resource-server/pkg/errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	MsgAuthenticationRequired = "Authentication required"
	MsgAccessDenied           = "Access denied"
	MsgInvalidRequestPrefix   = "Invalid request: "
	MsgInternalError          = "An internal error occurred"
)

// MapError переводит ошибку в статус и конверт ответа.
// Порядок проверок - от более конкретной ошибки к общей.
// Подробности внутренних ошибок клиенту не отдаются.
func MapError(err error) (int, api.Response[any]) {
	if errors.Is(err, apperrors.ErrUnauthenticated) {
		return http.StatusUnauthorized, api.Error(MsgAuthenticationRequired)
	}
	if errors.Is(err, apperrors.ErrForbidden) {
		return http.StatusForbidden, api.Error(MsgAccessDenied)
	}

	var argErr *apperrors.InvalidArgumentError
	if errors.As(err, &argErr) {
		return http.StatusBadRequest, api.Error(MsgInvalidRequestPrefix + argErr.Detail)
	}

	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError {
		return httpErr.Code, api.Error(httpErr.Message)
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) && echoErr.Code < http.StatusInternalServerError {
		return echoErr.Code, api.Error(echoMessage(echoErr))
	}

	return http.StatusInternalServerError, api.Error(MsgInternalError)
}

func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	code, resp := MapError(err)

	fields := []zap.Field{
		zap.Int("code", code),
		zap.String("method", c.Request().Method),
		zap.String("uri", c.Request().RequestURI),
		zap.Error(err),
	}
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) && httpErr.Context != nil {
		fields = append(fields, zap.Any("context", httpErr.Context))
	}

	switch {
	case code >= http.StatusInternalServerError:
		logger.Error("Unexpected Error", fields...)
	case code == http.StatusNotFound || code == http.StatusMethodNotAllowed:
		logger.Debug("HTTP Error", fields...)
	default:
		logger.Warn("HTTP Error", fields...)
	}

	if c.Response().Committed {
		return nil
	}
	if c.Request().Method == http.MethodHead {
		return c.NoContent(code)
	}
	return c.JSON(code, resp)
}

// HTTPErrorHandler - обработчик echo для ошибок, не пойманных контроллерами
// (роутер 404/405, паника после Recover и т.п.).
func HTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if rerr := ErrorResponse(c, err, logger); rerr != nil {
			logger.Error("HTTPErrorHandler: не удалось записать ответ", zap.Error(rerr))
		}
	}
}

func echoMessage(he *echo.HTTPError) string {
	switch m := he.Message.(type) {
	case string:
		return m
	case error:
		return m.Error()
	case nil:
		return http.StatusText(he.Code)
	default:
		return fmt.Sprint(m)
	}
}

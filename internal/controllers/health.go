package controllers

import (
	"net/http"
	"time"

	"resource-server/internal/dto"
	"resource-server/pkg/api"
	"resource-server/pkg/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const healthStatusUp = "UP"

type HealthController struct {
	appName    string
	appVersion string
	logger     *zap.Logger
	now        func() time.Time
}

func NewHealthController(appName, appVersion string, logger *zap.Logger) *HealthController {
	return &HealthController{
		appName:    appName,
		appVersion: appVersion,
		logger:     logger,
		now:        time.Now,
	}
}

// Health - публичная проверка живости приложения.
func (c *HealthController) Health(ctx echo.Context) error {
	middleware.LoggerFrom(ctx, c.logger).Debug("Health: запрос состояния")

	data := dto.HealthDTO{
		Status:      healthStatusUp,
		Application: c.appName,
		Timestamp:   c.now().UnixMilli(),
		Version:     c.appVersion,
	}
	return api.SuccessOne(ctx, http.StatusOK, "Application is healthy", data)
}

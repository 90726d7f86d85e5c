package controllers

import (
	"net/http"

	"resource-server/internal/dto"
	"resource-server/pkg/metrics"

	"github.com/labstack/echo/v4"
)

// ActuatorController отдаёт служебные эндпоинты без конверта ответа,
// в формате, который ждут системы мониторинга.
type ActuatorController struct {
	appName    string
	appVersion string
	metrics    *metrics.Metrics
}

func NewActuatorController(appName, appVersion string, m *metrics.Metrics) *ActuatorController {
	return &ActuatorController{
		appName:    appName,
		appVersion: appVersion,
		metrics:    m,
	}
}

func (c *ActuatorController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, dto.ActuatorHealthDTO{Status: healthStatusUp})
}

func (c *ActuatorController) Info(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, dto.ActuatorInfoDTO{
		Application: c.appName,
		Version:     c.appVersion,
	})
}

func (c *ActuatorController) Prometheus(ctx echo.Context) error {
	c.metrics.Handler().ServeHTTP(ctx.Response(), ctx.Request())
	return nil
}

package routes

import (
	"resource-server/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runHealthRouter(api *echo.Group, ctrl *controllers.HealthController) {
	api.GET("/health", ctrl.Health)
}

func runActuatorRouter(actuator *echo.Group, ctrl *controllers.ActuatorController) {
	actuator.GET("/health", ctrl.Health)
	actuator.GET("/info", ctrl.Info)
	actuator.GET("/prometheus", ctrl.Prometheus)
}

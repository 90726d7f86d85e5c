package routes

import (
	"resource-server/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runProtectedRouter(api *echo.Group, ctrl *controllers.ProtectedController) {
	protected := api.Group("/protected")
	protected.GET("/data", ctrl.GetData)
	protected.GET("/time", ctrl.GetServerTime)
}

package routes

import (
	"resource-server/internal/controllers"

	"github.com/labstack/echo/v4"
)

// Доступ (роль USER) проверяет AuthMiddleware по таблице правил.
func runUserRouter(api *echo.Group, ctrl *controllers.UserController) {
	users := api.Group("/user")
	users.GET("/profile", ctrl.GetProfile)
}

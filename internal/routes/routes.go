package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"resource-server/internal/authz"
	"resource-server/internal/controllers"
	"resource-server/internal/services"
	"resource-server/pkg/config"
	"resource-server/pkg/metrics"
	"resource-server/pkg/middleware"
	"resource-server/pkg/service"
)

func InitRouter(e *echo.Echo, jwtSvc service.JWTService, m *metrics.Metrics, logger *zap.Logger, cfg *config.Config) {
	logger.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	gatekeeper := authz.NewGatekeeper(authz.DefaultRules()...)
	userService := services.NewUserService(logger.Named("user"))
	authMW := middleware.NewAuthMiddleware(jwtSvc, userService, gatekeeper, m, logger.Named("auth"))

	// Таблица правил покрывает и несуществующие пути ("/**"),
	// поэтому проверка висит на всём echo, а не на группе.
	e.Use(authMW.Auth)

	// --- 1. КОНТРОЛЛЕРЫ ---
	healthController := controllers.NewHealthController(cfg.App.Name, cfg.App.Version, logger)
	actuatorController := controllers.NewActuatorController(cfg.App.Name, cfg.App.Version, m)
	userController := controllers.NewUserController(userService, logger.Named("user"))
	protectedController := controllers.NewProtectedController(logger)

	// --- 2. РОУТЕРЫ ---
	api := e.Group("/api")
	runHealthRouter(api, healthController)
	runUserRouter(api, userController)
	runProtectedRouter(api, protectedController)
	runActuatorRouter(e.Group("/actuator"), actuatorController)

	logger.Info("INIT_ROUTER: Создание маршрутов завершено")
}

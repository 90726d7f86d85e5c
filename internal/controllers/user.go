package controllers

import (
	"net/http"

	"resource-server/internal/services"
	"resource-server/pkg/api"
	"resource-server/pkg/middleware"
	"resource-server/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type UserController struct {
	userService services.UserServiceInterface
	logger      *zap.Logger
}

func NewUserController(userService services.UserServiceInterface, logger *zap.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

// GetProfile собирает профиль из claims текущего токена.
// Ошибка извлечения уходит в общий маппер ошибок.
func (c *UserController) GetProfile(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)

	profile, err := c.userService.ExtractProfile(utils.PrincipalFromContext(ctx.Request().Context()))
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	logger.Debug("GetProfile: профиль запрошен", zap.String("user", profile.ID))
	return api.SuccessOne(ctx, http.StatusOK, "User profile retrieved successfully", profile)
}

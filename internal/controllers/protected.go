package controllers

import (
	"net/http"
	"time"

	"resource-server/internal/dto"
	"resource-server/pkg/api"
	"resource-server/pkg/middleware"
	"resource-server/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	authorityPrefix     = "ROLE_"
	accessLevelAuthUser = "AUTHENTICATED_USER"
	localDateTimeLayout = "2006-01-02T15:04:05.000"
)

var demoNotifications = []string{
	"Welcome to the Keycloak Demo Application",
	"Your authentication was successful",
	"All systems are operational",
}

type ProtectedController struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewProtectedController(logger *zap.Logger) *ProtectedController {
	return &ProtectedController{logger: logger, now: time.Now}
}

func (c *ProtectedController) GetData(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)

	profile, err := utils.GetProfileFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	logger.Debug("GetData: запрос защищённых данных", zap.String("user", profile.ID))

	roles := profile.Roles.Sorted()
	authorities := make([]string, 0, len(roles))
	for _, r := range roles {
		authorities = append(authorities, authorityPrefix+r)
	}

	data := dto.ProtectedDataDTO{
		Message:     "This is protected data from the backend!",
		User:        profile.ID,
		Timestamp:   c.now().Format(localDateTimeLayout),
		Authorities: authorities,
		AccessLevel: accessLevelAuthUser,
		SampleData: dto.SampleDataDTO{
			DashboardStats: dto.DashboardStatsDTO{
				TotalUsers:   1250,
				ActiveUsers:  850,
				SystemHealth: "Excellent",
			},
			Notifications: append([]string(nil), demoNotifications...),
		},
	}
	return api.SuccessOne(ctx, http.StatusOK, "Protected data retrieved successfully", data)
}

func (c *ProtectedController) GetServerTime(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)

	profile, err := utils.GetProfileFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	logger.Debug("GetServerTime: запрос времени сервера", zap.String("user", profile.ID))

	t := c.now()
	data := dto.ServerTimeDTO{
		ServerTime:  t.Format(localDateTimeLayout),
		Timezone:    zoneName(t),
		RequestedBy: profile.ID,
	}
	return api.SuccessOne(ctx, http.StatusOK, "Server time retrieved successfully", data)
}

// zoneName - IANA имя зоны, если оно известно, иначе аббревиатура ("UTC", "MSK").
func zoneName(t time.Time) string {
	if name := t.Location().String(); name != "Local" {
		return name
	}
	abbr, _ := t.Zone()
	return abbr
}

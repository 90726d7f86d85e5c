package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"resource-server/internal/routes"
	"resource-server/pkg/config"
	apperrors "resource-server/pkg/errors"
	applogger "resource-server/pkg/logger"
	"resource-server/pkg/metrics"
	appmw "resource-server/pkg/middleware"
	"resource-server/pkg/service"
	"resource-server/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// runServe поднимает сервер и блокируется до отмены ctx (SIGINT/SIGTERM).
func runServe(ctx context.Context, envFile string) error {
	// 1. Конфиг и логгер
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	logger, err := applogger.NewLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("ошибка создания логгера: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// 2. Валидатор токенов. Ключи IdP подгружаются лениво, при первом запросе с токеном.
	jwtSvc, err := service.NewJWTService(ctx, service.JWTConfig{
		IssuerURI: cfg.OIDC.IssuerURI,
		JWKSURI:   cfg.OIDC.JWKSURI,
		Audience:  cfg.OIDC.Audience,
		Leeway:    cfg.OIDC.ClockSkew,
	}, logger.Named("jwt"))
	if err != nil {
		logger.Error("Ошибка настройки валидатора токенов", zap.Error(err))
		return err
	}

	m := metrics.New(cfg.App.Name)
	e := newServer(cfg, jwtSvc, m, logger)

	// 3. Запуск и плавная остановка
	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 Сервер запущен",
			zap.String("addr", cfg.Addr()),
			zap.String("application", cfg.App.Name),
			zap.String("version", cfg.App.Version),
		)
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Ошибка запуска сервера", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Получен сигнал остановки, завершаем работу")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка при остановке сервера", zap.Error(err))
		return err
	}
	return nil
}

func newServer(cfg *config.Config, jwtSvc service.JWTService, m *metrics.Metrics, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = utils.HTTPErrorHandler(logger)

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, utils.MsgInternalError, err, nil)
				_ = utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(appmw.RequestID())
	e.Use(appmw.RequestLogger(logger.Named("http")))
	e.Use(appmw.InjectLogger(logger))
	e.Use(appmw.CORS(cfg.CORS))
	e.Use(m.Middleware())

	// AuthMiddleware вешается внутри InitRouter
	routes.InitRouter(e, jwtSvc, m, logger, cfg)
	return e
}

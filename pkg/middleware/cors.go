package middleware

import (
	"resource-server/pkg/config"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// CORS строит echo CORS из конфига. "*" в заголовках означает любые:
// echo в этом случае отражает Access-Control-Request-Headers.
func CORS(cfg config.CORSConfig) echo.MiddlewareFunc {
	var headers []string
	for _, h := range cfg.AllowedHeaders {
		if h == "*" {
			headers = nil
			break
		}
		headers = append(headers, h)
	}

	return echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     headers,
		AllowCredentials: cfg.AllowCredentials,
		ExposeHeaders:    []string{echo.HeaderXRequestID, echo.HeaderWWWAuthenticate},
		MaxAge:           cfg.MaxAge,
	})
}

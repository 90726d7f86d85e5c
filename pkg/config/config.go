// Файл: pkg/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"resource-server/pkg/customvalidator"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Port            string        `validate:"required,numeric"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

type AppConfig struct {
	Name    string `validate:"required"`
	Version string `validate:"required"`
}

type LogConfig struct {
	Level string `validate:"oneof=debug info warn error"`
	// File - дополнительный файл для логов. Пустой - только stdout.
	File string
}

type OIDCConfig struct {
	IssuerURI string `validate:"required_without=JWKSURI,omitempty,url"`
	JWKSURI   string `validate:"omitempty,url"`
	Audience  string
	ClockSkew time.Duration `validate:"gte=0"`
}

type CORSConfig struct {
	AllowedOrigins   []string `validate:"required,dive,cors_origin"`
	AllowedMethods   []string `validate:"required,dive,http_method"`
	AllowedHeaders   []string `validate:"dive,header_name"`
	AllowCredentials bool
	MaxAge           int `validate:"gte=0"`
}

type Config struct {
	Server ServerConfig
	App    AppConfig
	Log    LogConfig
	OIDC   OIDCConfig
	CORS   CORSConfig
}

// Load читает env-файлы (по умолчанию .env, если есть) и переменные окружения,
// затем проверяет результат. Уже заданные переменные окружения не перезаписываются.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Println("Предупреждение: .env файл не найден или не удалось его загрузить.")
	}
	return FromEnv()
}

// FromEnv собирает конфиг только из окружения, без чтения .env.
func FromEnv() (*Config, error) {
	shutdownTimeout, err := getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	clockSkew, err := getEnvDuration("OIDC_CLOCK_SKEW", 60*time.Second)
	if err != nil {
		return nil, err
	}
	allowCredentials, err := getEnvBool("CORS_ALLOW_CREDENTIALS", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ShutdownTimeout: shutdownTimeout,
		},
		App: AppConfig{
			Name:    getEnv("APP_NAME", "keycloak-demo-backend"),
			Version: getEnv("APP_VERSION", "1.0.0"),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
			File:  getEnv("LOG_FILE", ""),
		},
		OIDC: OIDCConfig{
			IssuerURI: getEnv("OIDC_ISSUER_URI", ""),
			JWKSURI:   getEnv("OIDC_JWKS_URI", ""),
			Audience:  getEnv("OIDC_AUDIENCE", ""),
			ClockSkew: clockSkew,
		},
		CORS: CORSConfig{
			AllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			AllowedMethods:   getEnvList("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders:   getEnvList("CORS_ALLOWED_HEADERS", "*"),
			AllowCredentials: allowCredentials,
			MaxAge:           3600,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	v, err := customvalidator.New()
	if err != nil {
		return fmt.Errorf("ошибка регистрации правил валидации: %w", err)
	}
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("некорректная конфигурация: %w", err)
	}
	return nil
}

// Addr - адрес для echo.Start.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvBool(key string, fallback bool) (bool, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: ожидается true/false, получено %q", key, raw)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: некорректная длительность %q", key, raw)
	}
	return d, nil
}

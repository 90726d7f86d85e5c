// Файл: pkg/customvalidator/validator.go

package customvalidator

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

var knownMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
}

// New отдаёт валидатор с уже зарегистрированными правилами.
func New() (*validator.Validate, error) {
	v := validator.New()
	if err := RegisterCustomValidations(v); err != nil {
		return nil, err
	}
	return v, nil
}

// RegisterCustomValidations регистрирует наши правила в переданном экземпляре валидатора.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("http_method", isHTTPMethod); err != nil {
		return err
	}
	if err := v.RegisterValidation("cors_origin", isCORSOrigin); err != nil {
		return err
	}
	if err := v.RegisterValidation("header_name", isHeaderName); err != nil {
		return err
	}
	return nil
}

func isHTTPMethod(fl validator.FieldLevel) bool {
	_, ok := knownMethods[strings.ToUpper(fl.Field().String())]
	return ok
}

// isCORSOrigin: "*" или scheme://host[:port] без пути.
func isCORSOrigin(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "*" {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != "" && (u.Path == "" || u.Path == "/") && u.RawQuery == ""
}

// isHeaderName: "*" или токен из RFC 7230.
func isHeaderName(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "*" {
		return true
	}
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("!#$%&'*+-.^_`|~", r):
		default:
			return false
		}
	}
	return true
}

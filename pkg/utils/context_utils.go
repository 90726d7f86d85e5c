// Файл: pkg/utils/context_utils.go

package utils

import (
	"context"

	"resource-server/internal/claims"
	"resource-server/internal/dto"
	"resource-server/pkg/contextkeys"
	apperrors "resource-server/pkg/errors"
)

func WithClaims(ctx context.Context, set *claims.Set) context.Context {
	return context.WithValue(ctx, contextkeys.ClaimsKey, set)
}

func WithProfile(ctx context.Context, profile *dto.UserProfile) context.Context {
	return context.WithValue(ctx, contextkeys.ProfileKey, profile)
}

// PrincipalFromContext - principal запроса как есть, без приведения типа.
// Проверку типа выполняет извлечение профиля.
func PrincipalFromContext(ctx context.Context) interface{} {
	return ctx.Value(contextkeys.ClaimsKey)
}

func GetProfileFromContext(ctx context.Context) (*dto.UserProfile, error) {
	profile, ok := ctx.Value(contextkeys.ProfileKey).(*dto.UserProfile)
	if !ok || profile == nil {
		return nil, apperrors.ErrProfileNotFoundInContext
	}
	return profile, nil
}

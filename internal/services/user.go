package services

import (
	"fmt"

	"resource-server/internal/claims"
	"resource-server/internal/dto"
	apperrors "resource-server/pkg/errors"

	"go.uber.org/zap"
)

const (
	claimSubject           = "sub"
	claimPreferredUsername = "preferred_username"
	claimEmail             = "email"
	claimGivenName         = "given_name"
	claimFamilyName        = "family_name"
	claimRoles             = "roles"
	claimRealmAccess       = "realm_access"
	claimResourceAccess    = "resource_access"
)

type UserServiceInterface interface {
	ExtractProfile(principal interface{}) (*dto.UserProfile, error)
	HasRole(principal interface{}, role string) bool
}

type UserService struct {
	logger *zap.Logger
}

func NewUserService(logger *zap.Logger) *UserService {
	return &UserService{logger: logger}
}

// ExtractProfile строит профиль из claims проверенного токена.
// Ошибка возможна только если principal не *claims.Set.
func (s *UserService) ExtractProfile(principal interface{}) (*dto.UserProfile, error) {
	set, ok := principal.(*claims.Set)
	if !ok || set == nil {
		s.logger.Warn("ExtractProfile: principal не является набором claims JWT", zap.String("principal_type", typeName(principal)))
		return nil, apperrors.ErrInvalidPrincipal
	}

	profile := &dto.UserProfile{
		ID:        set.String(claimSubject),
		Username:  set.String(claimPreferredUsername),
		Email:     set.String(claimEmail),
		FirstName: set.String(claimGivenName),
		LastName:  set.String(claimFamilyName),
		Roles:     s.extractRoles(set),
	}

	s.logger.Debug("ExtractProfile: профиль извлечён",
		zap.String("id", profile.ID),
		zap.String("username", profile.Username),
		zap.Strings("roles", profile.Roles.Sorted()),
	)
	return profile, nil
}

// HasRole каждый раз заново выводит профиль, без кэша.
func (s *UserService) HasRole(principal interface{}, role string) bool {
	profile, err := s.ExtractProfile(principal)
	if err != nil {
		return false
	}
	return profile.HasRole(role)
}

func (s *UserService) extractRoles(set *claims.Set) dto.RoleSet {
	return dto.NewRoleSet().Union(
		s.rolesFromRolesClaim(set),
		s.rolesFromRealmAccess(set),
		s.rolesFromResourceAccess(set),
	)
}

// rolesFromRolesClaim - claim "roles" в виде списка строк.
func (s *UserService) rolesFromRolesClaim(set *claims.Set) dto.RoleSet {
	v := set.Get(claimRoles)
	if v.Kind() == claims.KindAbsent {
		return nil
	}
	roles, ok := v.AsStringList()
	if !ok {
		s.logShapeMismatch(claimRoles, v.Kind())
		return nil
	}
	return dto.NewRoleSet(roles...)
}

// rolesFromRealmAccess - realm_access.roles (роли realm в Keycloak).
func (s *UserService) rolesFromRealmAccess(set *claims.Set) dto.RoleSet {
	v := set.Get(claimRealmAccess)
	if v.Kind() == claims.KindAbsent {
		return nil
	}
	realm, ok := v.AsMapping()
	if !ok {
		s.logShapeMismatch(claimRealmAccess, v.Kind())
		return nil
	}
	return s.rolesOf(claimRealmAccess+".roles", realm)
}

// rolesFromResourceAccess - resource_access.<client>.roles по ВСЕМ клиентам.
func (s *UserService) rolesFromResourceAccess(set *claims.Set) dto.RoleSet {
	v := set.Get(claimResourceAccess)
	if v.Kind() == claims.KindAbsent {
		return nil
	}
	clients, ok := v.AsMapping()
	if !ok {
		s.logShapeMismatch(claimResourceAccess, v.Kind())
		return nil
	}

	out := dto.NewRoleSet()
	for clientID, access := range clients {
		path := claimResourceAccess + "." + clientID
		client, ok := access.AsMapping()
		if !ok {
			s.logShapeMismatch(path, access.Kind())
			continue
		}
		out.Union(s.rolesOf(path+".roles", client))
	}
	return out
}

func (s *UserService) rolesOf(path string, m claims.Mapping) dto.RoleSet {
	v := m.Get(claimRoles)
	if v.Kind() == claims.KindAbsent {
		return nil
	}
	roles, ok := v.AsStringList()
	if !ok {
		s.logShapeMismatch(path, v.Kind())
		return nil
	}
	return dto.NewRoleSet(roles...)
}

func (s *UserService) logShapeMismatch(claim string, kind claims.Kind) {
	s.logger.Debug("extractRoles: неожиданная форма claim, источник пропущен",
		zap.String("claim", claim),
		zap.Stringer("kind", kind),
	)
}

func typeName(v interface{}) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

package dto

import (
	"encoding/json"
	"sort"
)

// UserProfile строится заново на каждый запрос из claims токена и нигде не хранится.
type UserProfile struct {
	ID        string  `json:"id,omitempty"`
	Username  string  `json:"username,omitempty"`
	Email     string  `json:"email,omitempty"`
	FirstName string  `json:"firstName,omitempty"`
	LastName  string  `json:"lastName,omitempty"`
	Roles     RoleSet `json:"roles"`
}

// HasRole - проверка членства роли в профиле.
func (p *UserProfile) HasRole(role string) bool {
	if p == nil {
		return false
	}
	return p.Roles.Has(role)
}

// RoleSet - неупорядоченное множество ролей без дублей.
type RoleSet map[string]struct{}

func NewRoleSet(roles ...string) RoleSet {
	s := make(RoleSet, len(roles))
	s.Add(roles...)
	return s
}

func (s RoleSet) Add(roles ...string) {
	for _, r := range roles {
		s[r] = struct{}{}
	}
}

func (s RoleSet) Has(role string) bool {
	_, ok := s[role]
	return ok
}

// Union добавляет в s все роли из others.
func (s RoleSet) Union(others ...RoleSet) RoleSet {
	for _, o := range others {
		for r := range o {
			s[r] = struct{}{}
		}
	}
	return s
}

// Sorted - роли в детерминированном порядке для JSON и логов.
func (s RoleSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

func (s RoleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *RoleSet) UnmarshalJSON(data []byte) error {
	var roles []string
	if err := json.Unmarshal(data, &roles); err != nil {
		return err
	}
	*s = NewRoleSet(roles...)
	return nil
}

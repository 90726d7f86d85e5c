// internal/authz/permissions.go
package authz

// --- РОЛИ, КОТОРЫЕ ПРОВЕРЯЕТ СИСТЕМА ---

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// DefaultRules - таблица доступа приложения.
// Порядок важен: срабатывает первое совпадение, поэтому более узкие шаблоны идут выше.
func DefaultRules() []Rule {
	return []Rule{
		// Публичные
		{Patterns: []string{"/api/health", "/actuator/**", "/error"}, Requirement: Public()},

		// Защищённые
		{Patterns: []string{"/api/user/**"}, Requirement: RequireRole(RoleUser)},
		{Patterns: []string{"/api/protected/**"}, Requirement: Authenticated()},
		{Patterns: []string{"/api/admin/**"}, Requirement: RequireRole(RoleAdmin)},

		// Всё остальное - только с токеном
		{Patterns: []string{"/**"}, Requirement: Authenticated()},
	}
}

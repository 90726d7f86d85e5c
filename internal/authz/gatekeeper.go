package authz

import (
	"fmt"
	"path"
	"strings"
)

type RequirementKind int

const (
	KindPublic RequirementKind = iota
	KindAuthenticated
	KindRole
)

// Requirement - что нужно вызывающему, чтобы пройти правило.
type Requirement struct {
	Kind RequirementKind
	Role string
}

func Public() Requirement        { return Requirement{Kind: KindPublic} }
func Authenticated() Requirement { return Requirement{Kind: KindAuthenticated} }

func RequireRole(role string) Requirement {
	return Requirement{Kind: KindRole, Role: role}
}

func (r Requirement) String() string {
	switch r.Kind {
	case KindPublic:
		return "public"
	case KindAuthenticated:
		return "authenticated"
	case KindRole:
		return fmt.Sprintf("role(%s)", r.Role)
	default:
		return "unknown"
	}
}

// Rule связывает шаблоны путей с требованием.
// Шаблон - точный путь либо "prefix/**" (сам prefix и всё под ним).
type Rule struct {
	Patterns    []string
	Requirement Requirement
}

type DenyReason int

const (
	ReasonNone DenyReason = iota
	ReasonUnauthenticated
	ReasonForbidden
)

func (r DenyReason) String() string {
	switch r {
	case ReasonUnauthenticated:
		return "unauthenticated"
	case ReasonForbidden:
		return "forbidden"
	default:
		return "none"
	}
}

type Decision struct {
	Allowed bool
	Reason  DenyReason
	// Requirement сработавшего правила, для логов.
	Requirement Requirement
}

func allow(req Requirement) Decision { return Decision{Allowed: true, Requirement: req} }

func deny(reason DenyReason, req Requirement) Decision {
	return Decision{Reason: reason, Requirement: req}
}

// Subject - аутентифицированный вызывающий. nil означает анонимный запрос.
type Subject interface {
	HasRole(role string) bool
}

// Gatekeeper хранит упорядоченную таблицу правил. После создания не меняется.
type Gatekeeper struct {
	rules []Rule
}

func NewGatekeeper(rules ...Rule) *Gatekeeper {
	copied := make([]Rule, len(rules))
	for i, r := range rules {
		copied[i] = Rule{
			Patterns:    append([]string(nil), r.Patterns...),
			Requirement: r.Requirement,
		}
	}
	return &Gatekeeper{rules: copied}
}

// Match возвращает первое правило, подходящее под путь.
func (g *Gatekeeper) Match(requestPath string) (Rule, bool) {
	p := normalize(requestPath)
	for _, rule := range g.rules {
		for _, pattern := range rule.Patterns {
			if matchPattern(pattern, p) {
				return rule, true
			}
		}
	}
	return Rule{}, false
}

// Authorize решает, пропускать ли запрос. method принимается для полноты:
// ни одно правило таблицы не зависит от метода.
func (g *Gatekeeper) Authorize(requestPath, method string, subject Subject) Decision {
	req := Authenticated()
	if rule, ok := g.Match(requestPath); ok {
		req = rule.Requirement
	}

	switch req.Kind {
	case KindPublic:
		return allow(req)
	case KindAuthenticated:
		if subject == nil {
			return deny(ReasonUnauthenticated, req)
		}
		return allow(req)
	case KindRole:
		if subject == nil {
			return deny(ReasonUnauthenticated, req)
		}
		if !subject.HasRole(req.Role) {
			return deny(ReasonForbidden, req)
		}
		return allow(req)
	default:
		return deny(ReasonForbidden, req)
	}
}

// IsPublic - путь попадает под публичное правило.
func (g *Gatekeeper) IsPublic(requestPath string) bool {
	rule, ok := g.Match(requestPath)
	return ok && rule.Requirement.Kind == KindPublic
}

func matchPattern(pattern, p string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		if prefix == "" {
			return true
		}
		return p == prefix || strings.HasPrefix(p, prefix+"/")
	}
	return p == pattern
}

func normalize(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// Package claims wraps the claim set of a validated access token.
//
// Claim values arrive as decoded JSON (string, []interface{}, map[string]interface{}, ...).
// Each value is classified once into a Value with an explicit Kind, and callers narrow
// it with the As* accessors. A shape mismatch is reported through the ok flag, never a panic.
package claims

import (
	"github.com/golang-jwt/jwt/v5"
)

type Kind int

const (
	KindAbsent Kind = iota
	KindString
	KindStringList
	KindMapping
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindString:
		return "string"
	case KindStringList:
		return "string-list"
	case KindMapping:
		return "mapping"
	default:
		return "other"
	}
}

// Value - значение одного claim.
type Value struct {
	kind    Kind
	str     string
	list    []string
	mapping Mapping
}

// Mapping - вложенный объект claim (например realm_access).
type Mapping map[string]Value

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsStringList отдаёт копию, чтобы Set оставался неизменяемым.
func (v Value) AsStringList() ([]string, bool) {
	if v.kind != KindStringList {
		return nil, false
	}
	out := make([]string, len(v.list))
	copy(out, v.list)
	return out, true
}

func (v Value) AsMapping() (Mapping, bool) {
	if v.kind != KindMapping {
		return nil, false
	}
	out := make(Mapping, len(v.mapping))
	for k, item := range v.mapping {
		out[k] = item
	}
	return out, true
}

func (m Mapping) Get(name string) Value {
	return m[name]
}

// ValueOf классифицирует декодированное JSON-значение.
// Массив считается списком строк, только если все элементы - строки.
func ValueOf(raw interface{}) Value {
	switch t := raw.(type) {
	case nil:
		return Value{kind: KindAbsent}
	case string:
		return Value{kind: KindString, str: t}
	case []string:
		list := make([]string, len(t))
		copy(list, t)
		return Value{kind: KindStringList, list: list}
	case []interface{}:
		list := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return Value{kind: KindOther}
			}
			list = append(list, s)
		}
		return Value{kind: KindStringList, list: list}
	case map[string]interface{}:
		m := make(Mapping, len(t))
		for k, item := range t {
			m[k] = ValueOf(item)
		}
		return Value{kind: KindMapping, mapping: m}
	case jwt.MapClaims:
		return ValueOf(map[string]interface{}(t))
	default:
		return Value{kind: KindOther}
	}
}

// Set - неизменяемый набор claims проверенного токена.
type Set struct {
	values map[string]Value
}

// NewSet строит Set из claims, которые вернул валидатор токенов.
func NewSet(raw jwt.MapClaims) *Set {
	values := make(map[string]Value, len(raw))
	for name, v := range raw {
		values[name] = ValueOf(v)
	}
	return &Set{values: values}
}

// Get возвращает значение claim; отсутствующий claim имеет KindAbsent.
func (s *Set) Get(name string) Value {
	if s == nil {
		return Value{}
	}
	return s.values[name]
}

// String - удобный доступ к строковому claim; пустая строка, если claim отсутствует
// или имеет другой тип.
func (s *Set) String(name string) string {
	str, _ := s.Get(name).AsString()
	return str
}

// Subject - имя principal, как его видит остальной код (claim sub).
func (s *Set) Subject() string {
	return s.String("sub")
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

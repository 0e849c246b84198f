package matcher

import (
	"strings"

	formerrors "github.com/goliatone/go-formtags/pkg/errors"
)

// Parse compiles a matcher expression:
//
//	""        any field (catch-all)
//	"name"    the field called name
//	"name?"   like "name", but optional
//	"name*"   fields whose name starts with name
//	"name*?"  like "name*", but optional
//	"*name"   fields whose name ends with name
//	"*name?"  like "*name", but optional
//	"<name"   fields before name; "<=name" includes name
//	">name"   fields after name; ">=name" includes name
func Parse(expr string) (Matcher, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return Any{}, nil
	}

	if trimmed[0] == '<' || trimmed[0] == '>' {
		op := Operator(trimmed[:1])
		operand := trimmed[1:]
		if strings.HasPrefix(operand, "=") {
			op += "="
			operand = operand[1:]
		}
		operand = strings.TrimSpace(operand)
		if operand == "" {
			return nil, invalid(expr, "relative matcher requires a field name")
		}
		return Relative{Op: op, Operand: operand}, nil
	}

	optional := false
	if strings.HasSuffix(trimmed, "?") {
		optional = true
		trimmed = strings.TrimSuffix(trimmed, "?")
	}
	if strings.HasSuffix(trimmed, "*") {
		return Prefix{Prefix: strings.TrimSuffix(trimmed, "*"), Optional: optional}, nil
	}
	if strings.HasPrefix(trimmed, "*") {
		return Suffix{Suffix: strings.TrimPrefix(trimmed, "*"), Optional: optional}, nil
	}
	if trimmed == "" {
		return nil, invalid(expr, "name matcher requires a field name")
	}
	return Name{Name: trimmed, Optional: optional}, nil
}

// MustParse panics when the expression is invalid.
func MustParse(expr string) Matcher {
	m, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseAll compiles each expression in order.
func ParseAll(exprs ...string) ([]Matcher, error) {
	out := make([]Matcher, 0, len(exprs))
	for _, expr := range exprs {
		m, err := Parse(expr)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Canonical returns the canonical form of an expression, or the trimmed
// input when it does not parse.
func Canonical(expr string) string {
	m, err := Parse(expr)
	if err != nil {
		return strings.TrimSpace(expr)
	}
	return m.String()
}

func invalid(expr, reason string) error {
	return formerrors.Newf(formerrors.CodeInvalidMatcher, "invalid matcher %q: %s", expr, reason)
}

package matcher

import (
	"strings"

	formerrors "github.com/goliatone/go-formtags/pkg/errors"
	"github.com/goliatone/go-formtags/pkg/model"
)

// Kind classifies matchers. KindAny is the catch-all; every other kind is a
// specific matcher taking part in the first pass.
type Kind int

const (
	KindAny Kind = iota
	KindName
	KindPrefix
	KindSuffix
	KindRelative
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindName:
		return "name"
	case KindPrefix:
		return "prefix"
	case KindSuffix:
		return "suffix"
	case KindRelative:
		return "relative"
	default:
		return "unknown"
	}
}

// Rank values order matchers when the rank precedence mode is used. Lower
// ranks grab fields first.
const (
	RankName           = 0
	RankOptionalName   = 2
	RankSuffix         = 10
	RankPrefix         = 11
	RankOptionalSuffix = 12
	RankOptionalPrefix = 13
	RankBefore         = 50
	RankAfter          = 60
	RankAny            = 99
)

// Order maps field names to their position in the form.
type Order map[string]int

// NewOrder indexes fields by name. Later duplicates do not override earlier
// positions.
func NewOrder(fields []model.Field) Order {
	order := make(Order, len(fields))
	for i, field := range fields {
		if _, exists := order[field.Name]; exists {
			continue
		}
		order[field.Name] = i
	}
	return order
}

// Matcher decides whether a field belongs to a field spec.
type Matcher interface {
	Match(field model.Field, order Order) (bool, error)
	Kind() Kind
	// Required matchers are expected to match at least one field; the
	// assigner only enforces this when asked to.
	Required() bool
	Rank() int
	// String returns the canonical expression, parseable by Parse.
	String() string
}

// Any matches every field.
type Any struct{}

func (Any) Match(model.Field, Order) (bool, error) { return true, nil }
func (Any) Kind() Kind                             { return KindAny }
func (Any) Required() bool                         { return false }
func (Any) Rank() int                              { return RankAny }
func (Any) String() string                         { return "" }

// Name matches a single field by exact name.
type Name struct {
	Name     string
	Optional bool
}

func (m Name) Match(field model.Field, _ Order) (bool, error) {
	return field.Name == m.Name, nil
}

func (m Name) Kind() Kind     { return KindName }
func (m Name) Required() bool { return !m.Optional }

func (m Name) Rank() int {
	if m.Optional {
		return RankOptionalName
	}
	return RankName
}

func (m Name) String() string {
	if m.Optional {
		return m.Name + "?"
	}
	return m.Name
}

// Prefix matches every field whose name starts with Prefix.
type Prefix struct {
	Prefix   string
	Optional bool
}

func (m Prefix) Match(field model.Field, _ Order) (bool, error) {
	return strings.HasPrefix(field.Name, m.Prefix), nil
}

func (m Prefix) Kind() Kind     { return KindPrefix }
func (m Prefix) Required() bool { return !m.Optional }

func (m Prefix) Rank() int {
	if m.Optional {
		return RankOptionalPrefix
	}
	return RankPrefix
}

func (m Prefix) String() string {
	if m.Optional {
		return m.Prefix + "*?"
	}
	return m.Prefix + "*"
}

// Suffix matches every field whose name ends with Suffix.
type Suffix struct {
	Suffix   string
	Optional bool
}

func (m Suffix) Match(field model.Field, _ Order) (bool, error) {
	return strings.HasSuffix(field.Name, m.Suffix), nil
}

func (m Suffix) Kind() Kind     { return KindSuffix }
func (m Suffix) Required() bool { return !m.Optional }

func (m Suffix) Rank() int {
	if m.Optional {
		return RankOptionalSuffix
	}
	return RankSuffix
}

func (m Suffix) String() string {
	if m.Optional {
		return "*" + m.Suffix + "?"
	}
	return "*" + m.Suffix
}

// Operator is the comparison used by Relative.
type Operator string

const (
	Before     Operator = "<"
	BeforeOrAt Operator = "<="
	After      Operator = ">"
	AfterOrAt  Operator = ">="
)

// Relative matches fields positioned before or after the Operand field.
type Relative struct {
	Op      Operator
	Operand string
}

func (m Relative) Match(field model.Field, order Order) (bool, error) {
	pivot, ok := order[m.Operand]
	if !ok {
		return false, formerrors.Newf(formerrors.CodeUnknownField, "no such field: %s", m.Operand).
			WithDetail("matcher", m.String())
	}
	position, ok := order[field.Name]
	if !ok {
		return false, nil
	}
	switch m.Op {
	case Before:
		return position < pivot, nil
	case BeforeOrAt:
		return position <= pivot, nil
	case After:
		return position > pivot, nil
	case AfterOrAt:
		return position >= pivot, nil
	default:
		return false, formerrors.Newf(formerrors.CodeInvalidMatcher, "unknown operator: %s", m.Op)
	}
}

// Validate checks that the operand names a field in order.
func (m Relative) Validate(order Order) error {
	if _, ok := order[m.Operand]; !ok {
		return formerrors.Newf(formerrors.CodeUnknownField, "no such field: %s", m.Operand).
			WithDetail("matcher", m.String())
	}
	return nil
}

func (m Relative) Kind() Kind     { return KindRelative }
func (m Relative) Required() bool { return false }

func (m Relative) Rank() int {
	if m.Op == Before || m.Op == BeforeOrAt {
		return RankBefore
	}
	return RankAfter
}

func (m Relative) String() string {
	return string(m.Op) + m.Operand
}

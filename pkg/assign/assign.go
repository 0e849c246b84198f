package assign

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	formerrors "github.com/goliatone/go-formtags/pkg/errors"
	"github.com/goliatone/go-formtags/pkg/logging"
	"github.com/goliatone/go-formtags/pkg/matcher"
	"github.com/goliatone/go-formtags/pkg/model"
)

// Spec is one field spec: the matchers of a single field block. A spec
// without matchers, or holding an Any matcher, is the catch-all.
type Spec struct {
	Matchers []matcher.Matcher
}

// NewSpec parses the expressions into a spec.
func NewSpec(exprs ...string) (Spec, error) {
	matchers, err := matcher.ParseAll(exprs...)
	if err != nil {
		return Spec{}, err
	}
	return Spec{Matchers: matchers}, nil
}

// MustSpec panics when an expression is invalid.
func MustSpec(exprs ...string) Spec {
	spec, err := NewSpec(exprs...)
	if err != nil {
		panic(err)
	}
	return spec
}

// CatchAll reports whether the spec absorbs otherwise unmatched fields.
func (s Spec) CatchAll() bool {
	if len(s.Matchers) == 0 {
		return true
	}
	for _, m := range s.Matchers {
		if m.Kind() == matcher.KindAny {
			return true
		}
	}
	return false
}

func (s Spec) String() string {
	if s.CatchAll() {
		return "*any*"
	}
	parts := make([]string, 0, len(s.Matchers))
	for _, m := range s.Matchers {
		parts = append(parts, m.String())
	}
	return strings.Join(parts, " ")
}

// Unassigned marks a field no spec captured.
const Unassigned = -1

// Assignment pairs a field with the index of the spec it went to.
type Assignment struct {
	Field model.Field
	Spec  int
}

// Result is the outcome of an assignment. Assignments follow the input field
// order; BySpec lists each spec's fields in input order.
type Result struct {
	Assignments []Assignment
	BySpec      [][]model.Field
	// Matched holds the canonical expressions of matchers that captured at
	// least one field.
	Matched map[string]struct{}
}

// Dropped returns the fields no spec captured.
func (r Result) Dropped() []model.Field {
	var out []model.Field
	for _, a := range r.Assignments {
		if a.Spec == Unassigned {
			out = append(out, a.Field)
		}
	}
	return out
}

// FieldsFor returns the fields assigned to spec index i.
func (r Result) FieldsFor(i int) []model.Field {
	if i < 0 || i >= len(r.BySpec) {
		return nil
	}
	return r.BySpec[i]
}

// MatchedAny reports whether any of the expressions captured a field.
func (r Result) MatchedAny(exprs ...string) bool {
	for _, expr := range exprs {
		if _, ok := r.Matched[matcher.Canonical(expr)]; ok {
			return true
		}
	}
	return false
}

// Assigner distributes form fields over field specs in two passes: specific
// specs first, the catch-all last.
type Assigner struct {
	unmatched      UnmatchedPolicy
	precedence     Precedence
	requireMatches bool
	logger         *zerolog.Logger
}

// New constructs an Assigner. The zero configuration uses declaration order
// and warns about dropped fields.
func New(options ...Option) *Assigner {
	a := &Assigner{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(a)
	}
	return a
}

// Unmatched returns the configured unmatched policy.
func (a *Assigner) Unmatched() UnmatchedPolicy { return a.unmatched }

// Precedence returns the configured precedence mode.
func (a *Assigner) Precedence() Precedence { return a.precedence }

// Assign maps every field to at most one spec. More than one catch-all spec
// is a configuration error.
func (a *Assigner) Assign(fields []model.Field, specs []Spec) (Result, error) {
	catchAll, err := findCatchAll(specs)
	if err != nil {
		return Result{}, err
	}

	order := matcher.NewOrder(fields)
	if err := a.validate(fields, specs, catchAll, order); err != nil {
		return Result{}, err
	}

	owner := make([]int, len(fields))
	for i := range owner {
		owner[i] = Unassigned
	}
	matched := make(map[string]struct{})

	switch a.precedence {
	case PrecedenceRank:
		err = assignByRank(fields, specs, catchAll, order, owner, matched, a.requireMatches)
	default:
		err = assignByDeclaration(fields, specs, catchAll, order, owner, matched)
	}
	if err != nil {
		return Result{}, err
	}

	var leftover []string
	for i, field := range fields {
		if owner[i] != Unassigned {
			continue
		}
		if catchAll != Unassigned {
			owner[i] = catchAll
			if err := recordCatchAllMatches(field, specs[catchAll], order, matched); err != nil {
				return Result{}, err
			}
			continue
		}
		leftover = append(leftover, field.Name)
	}

	if len(leftover) > 0 {
		switch a.unmatched {
		case UnmatchedError:
			return Result{}, formerrors.Newf(formerrors.CodeUnmatchedFields, "%d form field(s) left over", len(leftover)).
				WithDetail("fields", strings.Join(leftover, ","))
		case UnmatchedDrop:
			logger := a.log()
			logger.Debug().Strs("fields", leftover).Msg("Dropping unmatched fields")
		default:
			logger := a.log()
			for _, name := range leftover {
				logger.Warn().Str("field", name).Msg("Field not matched by any field spec, dropping it")
			}
		}
	}

	result := Result{
		Assignments: make([]Assignment, len(fields)),
		BySpec:      make([][]model.Field, len(specs)),
		Matched:     matched,
	}
	for i, field := range fields {
		result.Assignments[i] = Assignment{Field: field, Spec: owner[i]}
		if owner[i] != Unassigned {
			result.BySpec[owner[i]] = append(result.BySpec[owner[i]], field)
		}
	}
	return result, nil
}

func (a *Assigner) log() *zerolog.Logger {
	if a.logger != nil {
		return a.logger
	}
	logger := logging.GetLogger("formtags.assign")
	return &logger
}

func findCatchAll(specs []Spec) (int, error) {
	catchAll := Unassigned
	for i, spec := range specs {
		if !spec.CatchAll() {
			continue
		}
		if catchAll != Unassigned {
			return Unassigned, formerrors.New(formerrors.CodeConfiguration, "more than one catch-all field spec declared").
				WithDetail("first", catchAll).
				WithDetail("second", i)
		}
		catchAll = i
	}
	return catchAll, nil
}

// validate checks relative operands and, when enabled, that every required
// matcher is satisfied by some field of the form. Under rank precedence the
// specific specs are checked against the fields still free at their rank by
// assignByRank instead.
func (a *Assigner) validate(fields []model.Field, specs []Spec, catchAll int, order matcher.Order) error {
	for si, spec := range specs {
		deferred := a.precedence == PrecedenceRank && si != catchAll
		for _, m := range spec.Matchers {
			if rel, ok := m.(matcher.Relative); ok {
				if err := rel.Validate(order); err != nil {
					return err
				}
			}
			if !a.requireMatches || !m.Required() || deferred {
				continue
			}
			satisfied := false
			for _, field := range fields {
				ok, err := m.Match(field, order)
				if err != nil {
					return err
				}
				if ok {
					satisfied = true
					break
				}
			}
			if !satisfied {
				return formerrors.Newf(formerrors.CodeRequiredUnmatched, "matcher %q did not match any field", m.String())
			}
		}
	}
	return nil
}

func assignByDeclaration(fields []model.Field, specs []Spec, catchAll int, order matcher.Order, owner []int, matched map[string]struct{}) error {
	for fi, field := range fields {
	next:
		for si, spec := range specs {
			if si == catchAll {
				continue
			}
			for _, m := range spec.Matchers {
				ok, err := m.Match(field, order)
				if err != nil {
					return err
				}
				if ok {
					owner[fi] = si
					matched[m.String()] = struct{}{}
					break next
				}
			}
		}
	}
	return nil
}

type rankedMatcher struct {
	spec    int
	matcher matcher.Matcher
}

// recordCatchAllMatches marks the named matchers of the catch-all spec that
// accept a field it absorbed, so if_field sees them.
func recordCatchAllMatches(field model.Field, spec Spec, order matcher.Order, matched map[string]struct{}) error {
	matched[matcher.Any{}.String()] = struct{}{}
	for _, m := range spec.Matchers {
		if m.Kind() == matcher.KindAny {
			continue
		}
		ok, err := m.Match(field, order)
		if err != nil {
			return err
		}
		if ok {
			matched[m.String()] = struct{}{}
		}
	}
	return nil
}

func assignByRank(fields []model.Field, specs []Spec, catchAll int, order matcher.Order, owner []int, matched map[string]struct{}, requireMatches bool) error {
	var ranked []rankedMatcher
	for si, spec := range specs {
		if si == catchAll {
			continue
		}
		for _, m := range spec.Matchers {
			ranked = append(ranked, rankedMatcher{spec: si, matcher: m})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].matcher.Rank() < ranked[j].matcher.Rank()
	})

	for _, rm := range ranked {
		claimed := false
		for fi, field := range fields {
			if owner[fi] != Unassigned {
				continue
			}
			ok, err := rm.matcher.Match(field, order)
			if err != nil {
				return err
			}
			if ok {
				owner[fi] = rm.spec
				matched[rm.matcher.String()] = struct{}{}
				claimed = true
			}
		}
		if requireMatches && rm.matcher.Required() && !claimed {
			return formerrors.Newf(formerrors.CodeRequiredUnmatched, "matcher %q did not match any remaining field", rm.matcher.String()).
				WithDetail("spec", rm.spec)
		}
	}
	return nil
}

package assign

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// UnmatchedPolicy decides what happens to fields no spec captured when the
// form block has no catch-all.
type UnmatchedPolicy int

const (
	// UnmatchedWarn drops the field and logs a warning.
	UnmatchedWarn UnmatchedPolicy = iota
	// UnmatchedDrop drops the field silently.
	UnmatchedDrop
	// UnmatchedError fails the assignment.
	UnmatchedError
)

func (p UnmatchedPolicy) String() string {
	switch p {
	case UnmatchedWarn:
		return "warn"
	case UnmatchedDrop:
		return "drop"
	case UnmatchedError:
		return "error"
	default:
		return fmt.Sprintf("UnmatchedPolicy(%d)", int(p))
	}
}

// ParseUnmatchedPolicy accepts "warn", "drop" or "error". Empty means warn.
func ParseUnmatchedPolicy(raw string) (UnmatchedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "warn":
		return UnmatchedWarn, nil
	case "drop":
		return UnmatchedDrop, nil
	case "error":
		return UnmatchedError, nil
	default:
		return UnmatchedWarn, fmt.Errorf("assign: unknown unmatched policy %q", raw)
	}
}

// Precedence selects how specific specs compete for a field in the first
// pass.
type Precedence int

const (
	// PrecedenceDeclaration gives each field to the first specific spec, in
	// declaration order, that matches it.
	PrecedenceDeclaration Precedence = iota
	// PrecedenceRank sorts matchers by their rank (exact names first, then
	// prefixes, then relative matchers) and lets them take fields greedily;
	// declaration order breaks ties.
	PrecedenceRank
)

func (p Precedence) String() string {
	switch p {
	case PrecedenceDeclaration:
		return "declaration"
	case PrecedenceRank:
		return "rank"
	default:
		return fmt.Sprintf("Precedence(%d)", int(p))
	}
}

// ParsePrecedence accepts "declaration" or "rank". Empty means declaration.
func ParsePrecedence(raw string) (Precedence, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "declaration":
		return PrecedenceDeclaration, nil
	case "rank":
		return PrecedenceRank, nil
	default:
		return PrecedenceDeclaration, fmt.Errorf("assign: unknown precedence %q", raw)
	}
}

// Option configures an Assigner.
type Option func(*Assigner)

// WithUnmatchedPolicy sets the policy for fields left over without a
// catch-all.
func WithUnmatchedPolicy(policy UnmatchedPolicy) Option {
	return func(a *Assigner) {
		a.unmatched = policy
	}
}

// WithPrecedence sets the first pass precedence mode.
func WithPrecedence(precedence Precedence) Option {
	return func(a *Assigner) {
		a.precedence = precedence
	}
}

// WithRequireMatches makes required matchers ("name", "name*") fail the
// assignment when no field in the form satisfies them.
func WithRequireMatches(enabled bool) Option {
	return func(a *Assigner) {
		a.requireMatches = enabled
	}
}

// WithLogger overrides the logger used for dropped field warnings.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Assigner) {
		a.logger = &logger
	}
}

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	formerrors "github.com/goliatone/go-formtags/pkg/errors"
)

func TestErrorString(t *testing.T) {
	err := formerrors.New(formerrors.CodeUnknownField, "relative matcher names an unknown field").
		WithDetail("matcher", "<phone").
		WithDetail("field", "phone")

	want := "[UNKNOWN_FIELD] relative matcher names an unknown field (field=phone, matcher=<phone)"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}

	wrapped := formerrors.Wrapf(stderrors.New("unexpected end"), formerrors.CodeTemplate, "parse %s", "form.tpl")
	if got := wrapped.Error(); got != "[TEMPLATE] parse form.tpl: unexpected end" {
		t.Fatalf("unexpected wrapped message %q", got)
	}
}

func TestIsAndHasCode(t *testing.T) {
	base := formerrors.Newf(formerrors.CodeUnmatchedFields, "%d fields unmatched", 2)
	chained := fmt.Errorf("render contact: %w", base)

	if !stderrors.Is(chained, formerrors.ErrUnmatchedFields) {
		t.Fatalf("expected chain to match sentinel")
	}
	if stderrors.Is(chained, formerrors.ErrConfiguration) {
		t.Fatalf("unexpected match on a different code")
	}
	if !formerrors.HasCode(chained, formerrors.CodeUnmatchedFields) {
		t.Fatalf("expected HasCode to find the code")
	}
	if got := formerrors.CodeOf(chained); got != formerrors.CodeUnmatchedFields {
		t.Fatalf("CodeOf() = %q", got)
	}
	if got := formerrors.CodeOf(stderrors.New("plain")); got != "" {
		t.Fatalf("expected empty code for plain errors, got %q", got)
	}
}

func TestWrap(t *testing.T) {
	if formerrors.Wrap(nil, formerrors.CodeTemplate, "ignored") != nil {
		t.Fatalf("expected nil for nil error")
	}
	if formerrors.Wrapf(nil, formerrors.CodeTemplate, "ignored %d", 1) != nil {
		t.Fatalf("expected nil for nil error")
	}

	cause := stderrors.New("boom")
	err := formerrors.Wrap(cause, formerrors.CodeInvalidMatcher, "parse matcher")
	if !stderrors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be reachable")
	}
	if !formerrors.HasCode(err, formerrors.CodeInvalidMatcher) {
		t.Fatalf("expected code on wrapper")
	}
}

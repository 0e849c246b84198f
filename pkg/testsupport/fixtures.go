package testsupport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formtags/pkg/model"
)

// SimpleForm mirrors the classic fixture used across the tag tests: four
// visible fields and one hidden field.
func SimpleForm() model.Form {
	return model.Form{
		Name: "simple",
		Fields: []model.Field{
			{Name: "textfield", Type: model.FieldTypeString, Required: true},
			{Name: "textfield2", Type: model.FieldTypeString, Required: true},
			{Name: "numberfield", Type: model.FieldTypeInteger, Required: true},
			{Name: "numberfield2", Type: model.FieldTypeInteger, Required: true},
			{Name: "hidden1", Type: model.FieldTypeInteger, Widget: model.WidgetHiddenInput},
		},
	}
}

// ChoiceForm has a single flat choice field.
func ChoiceForm() model.Form {
	return model.Form{
		Name: "choice",
		Fields: []model.Field{{
			Name: "choicefield",
			Choices: []model.Choice{
				{Value: "A", Label: "Choice 1"},
				{Value: "B", Label: "Choice 2"},
				{Value: "C", Label: "Choice 3"},
			},
		}},
	}
}

// GroupedChoiceForm has one ungrouped choice followed by two option groups.
func GroupedChoiceForm() model.Form {
	return model.Form{
		Name: "grouped",
		Fields: []model.Field{{
			Name: "choicefield",
			Choices: []model.Choice{
				{Value: "0", Label: "C0"},
				{Label: "GA", Choices: []model.Choice{{Value: "1", Label: "C1"}, {Value: "2", Label: "C2"}}},
				{Label: "GB", Choices: []model.Choice{{Value: "3", Label: "C3"}, {Value: "4", Label: "C4"}}},
			},
		}},
	}
}

// MustLoadForm loads a YAML or JSON form fixture.
func MustLoadForm(t *testing.T, path string) model.Form {
	t.Helper()

	form, err := LoadForm(path)
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	return form
}

// LoadForm reads a form fixture, returning an error for callers managing
// setup outside of *testing.T.
func LoadForm(path string) (model.Form, error) {
	if path == "" {
		return model.Form{}, errors.New("testsupport: form path is required")
	}
	form, err := model.LoadForm(path)
	if err != nil {
		return model.Form{}, fmt.Errorf("testsupport: %w", err)
	}
	return form, nil
}

var whitespace = regexp.MustCompile(`\s`)

// StripSpace removes every whitespace character so template output can be
// compared without caring about indentation.
func StripSpace(s string) string {
	return whitespace.ReplaceAllString(s, "")
}

// CompareStripped diffs two strings after StripSpace.
func CompareStripped(want, got string) string {
	return cmp.Diff(StripSpace(want), StripSpace(got))
}


// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}

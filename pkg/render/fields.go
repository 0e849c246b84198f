package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-formtags/pkg/assign"
	"github.com/goliatone/go-formtags/pkg/model"
)

// Fragment renders a single field.
type Fragment interface {
	RenderField(ctx context.Context, field model.Field) (string, error)
}

// FragmentFunc adapts a function to Fragment.
type FragmentFunc func(ctx context.Context, field model.Field) (string, error)

// RenderField calls fn.
func (fn FragmentFunc) RenderField(ctx context.Context, field model.Field) (string, error) {
	return fn(ctx, field)
}

// FieldSpec pairs the matchers of one field block with the fragment that
// renders the fields it captures.
type FieldSpec struct {
	Spec     assign.Spec
	Fragment Fragment
}

// NewFieldSpec parses the matcher expressions. No expression (or an empty
// one) declares the catch-all.
func NewFieldSpec(fragment Fragment, exprs ...string) (FieldSpec, error) {
	if fragment == nil {
		return FieldSpec{}, errors.New("render: field spec requires a fragment")
	}
	spec, err := assign.NewSpec(exprs...)
	if err != nil {
		return FieldSpec{}, err
	}
	return FieldSpec{Spec: spec, Fragment: fragment}, nil
}

// MustFieldSpec panics when NewFieldSpec fails.
func MustFieldSpec(fragment Fragment, exprs ...string) FieldSpec {
	spec, err := NewFieldSpec(fragment, exprs...)
	if err != nil {
		panic(err)
	}
	return spec
}

// FieldRenderer runs the two-pass assignment and renders each captured field
// with its spec's fragment.
type FieldRenderer struct {
	assigner *assign.Assigner
}

// NewFieldRenderer constructs a FieldRenderer configured with assigner
// options.
func NewFieldRenderer(options ...assign.Option) *FieldRenderer {
	return &FieldRenderer{assigner: assign.New(options...)}
}

// Render returns one rendered string per assigned field, in the original
// field order. Fields dropped by the unmatched policy do not appear.
func (r *FieldRenderer) Render(ctx context.Context, fields []model.Field, specs []FieldSpec) ([]string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	assigner := r.assigner
	if assigner == nil {
		assigner = assign.New()
	}

	plain := make([]assign.Spec, len(specs))
	for i, spec := range specs {
		if spec.Fragment == nil {
			return nil, fmt.Errorf("render: field spec %d (%s) has no fragment", i, spec.Spec)
		}
		plain[i] = spec.Spec
	}

	result, err := assigner.Assign(fields, plain)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(fields))
	for _, assignment := range result.Assignments {
		if assignment.Spec == assign.Unassigned {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rendered, err := specs[assignment.Spec].Fragment.RenderField(ctx, assignment.Field)
		if err != nil {
			return nil, fmt.Errorf("render: field %q: %w", assignment.Field.Name, err)
		}
		out = append(out, rendered)
	}
	return out, nil
}

// Render is a convenience wrapper around a default FieldRenderer.
func Render(ctx context.Context, fields []model.Field, specs []FieldSpec) ([]string, error) {
	return NewFieldRenderer().Render(ctx, fields, specs)
}

// StringRenderer is the part of template.TemplateRenderer fragments need.
type StringRenderer interface {
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
}

// TemplateFragment renders template source through a template engine with
// the field bound under Var ("field" when empty).
type TemplateFragment struct {
	Engine StringRenderer
	Source string
	Var    string
	// Data is merged into the context of every invocation.
	Data map[string]any
}

// RenderField implements Fragment.
func (f TemplateFragment) RenderField(_ context.Context, field model.Field) (string, error) {
	if f.Engine == nil {
		return "", errors.New("render: template fragment requires an engine")
	}
	name := strings.TrimSpace(f.Var)
	if name == "" {
		name = "field"
	}
	data := make(map[string]any, len(f.Data)+1)
	for key, value := range f.Data {
		data[key] = value
	}
	data[name] = field.Context()
	return f.Engine.RenderString(f.Source, data)
}

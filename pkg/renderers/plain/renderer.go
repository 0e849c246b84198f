// Package plain renders forms without templates: field specs map matcher
// expressions to fragments, and a component backed catch-all renders every
// field no spec claims.
package plain

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-formtags/pkg/assign"
	"github.com/goliatone/go-formtags/pkg/model"
	"github.com/goliatone/go-formtags/pkg/render"
	"github.com/goliatone/go-formtags/pkg/renderers/components"
)

type Option func(*Renderer)

// WithSpec declares a field spec ahead of the default catch-all.
func WithSpec(spec render.FieldSpec) Option {
	return func(r *Renderer) {
		r.specs = append(r.specs, spec)
	}
}

// WithRegistry overrides the component registry of the catch-all.
func WithRegistry(registry *components.Registry) Option {
	return func(r *Renderer) {
		r.registry = registry
	}
}

// WithTemplateEngine supplies the engine template components render with.
func WithTemplateEngine(engine render.StringRenderer) Option {
	return func(r *Renderer) {
		r.engine = engine
	}
}

// WithAssignOptions configures the field assignment.
func WithAssignOptions(options ...assign.Option) Option {
	return func(r *Renderer) {
		r.assignOptions = append(r.assignOptions, options...)
	}
}

// Renderer emits a bare <form> with one block per field.
type Renderer struct {
	specs         []render.FieldSpec
	registry      *components.Registry
	engine        render.StringRenderer
	assignOptions []assign.Option
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer. Specs are validated when rendering.
func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.registry == nil {
		r.registry = components.NewDefaultRegistry()
	}
	return r
}

func (r *Renderer) Name() string {
	return "plain"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render prepares the form and renders its visible fields through the
// configured specs. A catch-all rendering components is appended unless one
// of the specs already is the catch-all.
func (r *Renderer) Render(ctx context.Context, form model.Form, options render.RenderOptions) ([]byte, error) {
	prepared := render.Prepare(form, options)

	fragment := components.NewFragment(r.registry, r.engine)
	specs := make([]render.FieldSpec, 0, len(r.specs)+1)
	hasCatchAll := false
	for _, spec := range r.specs {
		if spec.Spec.CatchAll() {
			hasCatchAll = true
		}
		specs = append(specs, spec)
	}
	if !hasCatchAll {
		specs = append(specs, render.FieldSpec{Spec: assign.Spec{}, Fragment: fragment})
	}

	fields, err := render.NewFieldRenderer(r.assignOptions...).Render(ctx, prepared.VisibleFields(), specs)
	if err != nil {
		return nil, fmt.Errorf("plain renderer: %w", err)
	}

	var builder strings.Builder
	method := strings.ToLower(strings.TrimSpace(prepared.Method))
	if method == "" {
		method = "post"
	}
	builder.WriteString(`<form class="formtags-form" method="`)
	builder.WriteString(html.EscapeString(method))
	builder.WriteString(`"`)
	if action := strings.TrimSpace(prepared.Action); action != "" {
		builder.WriteString(` action="`)
		builder.WriteString(html.EscapeString(action))
		builder.WriteString(`"`)
	}
	builder.WriteString(">\n")

	if len(prepared.Errors) > 0 {
		builder.WriteString(`<ul class="formtags-errors">`)
		for _, msg := range prepared.Errors {
			builder.WriteString(`<li>`)
			builder.WriteString(html.EscapeString(msg))
			builder.WriteString(`</li>`)
		}
		builder.WriteString("</ul>\n")
	}

	for _, rendered := range fields {
		builder.WriteString(rendered)
		builder.WriteByte('\n')
	}
	for _, hidden := range prepared.HiddenFields() {
		builder.WriteString(hidden.HTML())
		builder.WriteByte('\n')
	}
	builder.WriteString("</form>\n")
	return []byte(builder.String()), nil
}

// Package formtags is the entry point for rendering forms with matcher based
// field blocks. It wires the template engine, the built-in renderers and the
// OpenAPI form source together; the underlying packages can be used directly
// for finer control.
package formtags

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-formtags/pkg/assign"
	"github.com/goliatone/go-formtags/pkg/model"
	"github.com/goliatone/go-formtags/pkg/openapi"
	"github.com/goliatone/go-formtags/pkg/render"
	"github.com/goliatone/go-formtags/pkg/render/template/pongo"
	"github.com/goliatone/go-formtags/pkg/renderers/plain"
	"github.com/goliatone/go-formtags/pkg/renderers/vanilla"
)

// DefaultRenderer is used when no renderer name is given.
const DefaultRenderer = "vanilla"

// RenderOptions carries per-request values, errors and template overrides.
type RenderOptions = render.RenderOptions

// FieldSubset restricts rendering to fields in the given groups or tags.
type FieldSubset = render.FieldSubset

// FieldSpec pairs matchers with the fragment rendering the fields they claim.
type FieldSpec = render.FieldSpec

type (
	Form  = model.Form
	Field = model.Field
)

type Option func(*options)

type options struct {
	templatesDir  string
	extension     string
	assignOptions []assign.Option
}

// WithTemplatesDir searches dir for templates before the embedded ones.
func WithTemplatesDir(dir string) Option {
	return func(o *options) {
		o.templatesDir = dir
	}
}

// WithExtension sets the template file extension (".tpl" by default).
func WithExtension(ext string) Option {
	return func(o *options) {
		o.extension = ext
	}
}

// WithAssignOptions configures how field blocks claim fields.
func WithAssignOptions(opts ...assign.Option) Option {
	return func(o *options) {
		o.assignOptions = append(o.assignOptions, opts...)
	}
}

// NewRegistry returns a registry holding the vanilla and plain renderers,
// and the engine both render with. Call Reset on the engine to reload
// templates from disk.
func NewRegistry(opts ...Option) (*render.Registry, *pongo.Engine, error) {
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	engine, err := pongo.New(
		pongo.WithBaseDir(cfg.templatesDir),
		pongo.WithFS(vanilla.TemplatesFS()),
		pongo.WithExtension(cfg.extension),
		pongo.WithAssignOptions(cfg.assignOptions...),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("formtags: %w", err)
	}

	vanillaRenderer, err := vanilla.New(vanilla.WithTemplateRenderer(engine))
	if err != nil {
		return nil, nil, fmt.Errorf("formtags: %w", err)
	}

	registry := render.NewRegistry()
	registry.MustRegister(vanillaRenderer)
	registry.MustRegister(plain.New(
		plain.WithAssignOptions(cfg.assignOptions...),
		plain.WithTemplateEngine(engine),
	))
	return registry, engine, nil
}

// RenderHTML renders form with the named built-in renderer.
func RenderHTML(ctx context.Context, form Form, rendererName string, renderOpts RenderOptions, opts ...Option) ([]byte, error) {
	registry, _, err := NewRegistry(opts...)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(rendererName)
	if name == "" {
		name = DefaultRenderer
	}
	renderer, err := registry.Get(name)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, form, renderOpts)
}

// GenerateHTML loads the OpenAPI document at path (a file or http(s) URL),
// builds the form of operationID and renders it.
func GenerateHTML(ctx context.Context, path, operationID, rendererName string, opts ...Option) ([]byte, error) {
	form, err := openapi.LoadForm(ctx, path, operationID)
	if err != nil {
		return nil, err
	}
	return RenderHTML(ctx, form, rendererName, RenderOptions{}, opts...)
}

// Render renders each field through the spec that claims it, in field order.
func Render(ctx context.Context, fields []Field, specs []FieldSpec) ([]string, error) {
	return render.Render(ctx, fields, specs)
}

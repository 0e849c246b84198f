package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-formtags/pkg/assign"
	"github.com/goliatone/go-formtags/pkg/model"
	"github.com/goliatone/go-formtags/pkg/render"
	rendertemplate "github.com/goliatone/go-formtags/pkg/render/template"
	"github.com/goliatone/go-formtags/pkg/render/template/pongo"
)

// DefaultTemplate is the template rendered when RenderOptions.Template is
// empty.
const DefaultTemplate = "templates/form"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	assignOptions    []assign.Option
	classes          map[ChromeClass]string
	translator       render.Translator
	submitLabel      string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer. The renderer must
// have the form tags registered.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithAssignOptions configures how form blocks distribute fields over field
// tags. Ignored when a custom template renderer is injected.
func WithAssignOptions(options ...assign.Option) Option {
	return func(cfg *config) {
		cfg.assignOptions = append(cfg.assignOptions, options...)
	}
}

// WithClasses appends extra classes to the semantic chrome classes.
func WithClasses(classes map[ChromeClass]string) Option {
	return func(cfg *config) {
		cfg.classes = mergeClasses(cfg.classes, classes)
	}
}

// WithTranslator translates template strings such as the submit label.
func WithTranslator(translator render.Translator) Option {
	return func(cfg *config) {
		cfg.translator = translator
	}
}

// WithSubmitLabel sets the untranslated submit button label.
func WithSubmitLabel(label string) Option {
	return func(cfg *config) {
		if label = strings.TrimSpace(label); label != "" {
			cfg.submitLabel = label
		}
	}
}

// Renderer renders a form through a template built on the form tags.
type Renderer struct {
	templates   rendertemplate.TemplateRenderer
	classes     map[string]string
	submitLabel string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), submitLabel: "Submit"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithAssignOptions(cfg.assignOptions...),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	if err := renderer.GlobalContext(render.TemplateI18nFuncs(cfg.translator, render.TemplateI18nConfig{})); err != nil {
		return nil, fmt.Errorf("vanilla renderer: register i18n helpers: %w", err)
	}

	return &Renderer{
		templates:   renderer,
		classes:     chromeClasses(cfg.classes),
		submitLabel: cfg.submitLabel,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render prepares the form with options and renders options.Template, or the
// built-in form template.
func (r *Renderer) Render(ctx context.Context, form model.Form, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prepared := render.Prepare(form, options)

	data := make(map[string]any, len(options.Data)+8)
	for key, value := range options.Data {
		data[key] = value
	}
	method := strings.ToLower(strings.TrimSpace(prepared.Method))
	if method == "" {
		method = "post"
	}
	data["form"] = prepared
	data["form_errors"] = prepared.Errors
	data["method"] = method
	data["action"] = prepared.Action
	data["classes"] = r.classes
	data["locale"] = options.Locale
	data["submit"] = map[string]any{"default": r.submitLabel}

	name := strings.TrimSpace(options.Template)
	if name == "" {
		name = DefaultTemplate
	}

	result, err := r.templates.RenderTemplate(name, data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

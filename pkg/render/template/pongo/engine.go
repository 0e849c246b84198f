package pongo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/flosch/pongo2/v6"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formtags/pkg/assign"
	"github.com/goliatone/go-formtags/pkg/logging"
	"github.com/goliatone/go-formtags/pkg/model"
	"github.com/goliatone/go-formtags/pkg/render/template"
	"github.com/goliatone/go-formtags/pkg/tags"
)

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	baseDir    string
	templates  fs.FS
	extension  string
	templateFn map[string]any
	globalData map[string]any
	assigner   *assign.Assigner
	logger     *zerolog.Logger
}

// WithBaseDir loads templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the default template extension (".tpl").
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithTemplateFunc registers helper functions or filters when the engine loads.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.templateFn == nil {
			cfg.templateFn = make(map[string]any, len(funcs))
		}
		for name, fn := range funcs {
			cfg.templateFn[strings.TrimSpace(name)] = fn
		}
	}
}

// WithGlobalData seeds global context values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// WithAssigner sets the assigner form blocks use to distribute fields.
func WithAssigner(assigner *assign.Assigner) Option {
	return func(cfg *config) {
		cfg.assigner = assigner
	}
}

// WithAssignOptions builds the form block assigner from options.
func WithAssignOptions(options ...assign.Option) Option {
	return func(cfg *config) {
		cfg.assigner = assign.New(options...)
	}
}

// WithLogger overrides the engine logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = &logger
	}
}

// Engine is a pongo2 template set with the form tags available.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	tplExt      string
	logger      zerolog.Logger
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New constructs an Engine. Inline rendering through RenderString works
// without a template source; RenderTemplate needs WithBaseDir or WithFS.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		extension: ".tpl",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if err := tags.Register(); err != nil {
		return nil, fmt.Errorf("pongo: register form tags: %w", err)
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("pongo: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}
	if len(loaders) == 0 {
		loaders = append(loaders, pongo2.NewFSLoader(emptyFS{}))
	}

	logger := logging.GetLogger("formtags.template")
	if cfg.logger != nil {
		logger = *cfg.logger
	}

	engine := &Engine{
		templateSet: pongo2.NewSet("formtags", loaders...),
		templates:   make(map[string]*pongo2.Template),
		tplExt:      cfg.extension,
		logger:      logger,
	}
	registerDefaultFilters()

	if cfg.assigner != nil {
		engine.templateSet.Globals[tags.AssignerKey] = cfg.assigner
	}
	if err := engine.GlobalContext(cfg.globalData); err != nil {
		return nil, fmt.Errorf("pongo: apply global data: %w", err)
	}
	for name, fn := range cfg.templateFn {
		if err := engine.registerTemplateFunc(name, fn); err != nil {
			return nil, fmt.Errorf("pongo: register template func %q: %w", name, err)
		}
	}

	return engine, nil
}

// Render treats name as inline template content when it contains template
// delimiters, and as a template name otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if isTemplateContent(name) {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate renders a named template, appending the configured extension
// when missing.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("pongo: engine is nil")
	}
	templatePath := name
	if !strings.HasSuffix(templatePath, e.tplExt) {
		templatePath += e.tplExt
	}

	tmpl, err := e.getTemplate(templatePath)
	if err != nil {
		return "", err
	}

	rendered, err := e.execute(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("pongo: execute template %q: %w", templatePath, err)
	}
	return rendered, writeAll(rendered, out)
}

// RenderString parses and renders inline template content.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("pongo: engine is nil")
	}

	tmpl, err := e.templateSet.FromString(templateContent)
	if err != nil {
		return "", fmt.Errorf("pongo: parse template string: %w", err)
	}

	rendered, err := e.execute(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("pongo: execute template string: %w", err)
	}
	return rendered, writeAll(rendered, out)
}

func (e *Engine) execute(tmpl *pongo2.Template, data any) (string, error) {
	viewContext, err := convertToContext(data)
	if err != nil {
		return "", fmt.Errorf("convert data: %w", err)
	}

	var buf bytes.Buffer

	e.mu.RLock()
	err = tmpl.ExecuteWriter(viewContext, &buf)
	e.mu.RUnlock()

	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func writeAll(rendered string, out []io.Writer) error {
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return err
		}
	}
	return nil
}

// RegisterFilter registers a template filter. Filters are global to pongo2,
// so registering an existing name fails.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("pongo: filter name and function required")
	}

	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}

	if pongo2.FilterExists(name) {
		return fmt.Errorf("pongo: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, filter)
}

// GlobalContext merges data into the globals every template sees.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.templateSet == nil {
		return errors.New("pongo: engine is nil")
	}
	if data == nil {
		return nil
	}

	globalCtx, err := convertToContext(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals.Update(globalCtx)
	return nil
}

// Reset drops parsed templates so the next render reloads them from their
// source.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	dropped := len(e.templates)
	e.templates = make(map[string]*pongo2.Template)
	e.logger.Debug().Int("templates", dropped).Msg("Template cache cleared")
}

func (e *Engine) registerTemplateFunc(name string, fn any) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || fn == nil {
		return nil
	}

	if filter, ok := fn.(pongo2.FilterFunction); ok {
		if pongo2.FilterExists(trimmed) {
			return nil
		}
		return pongo2.RegisterFilter(trimmed, filter)
	}

	if !isCallable(fn) {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals[trimmed] = fn
	return nil
}

func (e *Engine) getTemplate(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}

	tmpl, err := e.templateSet.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("pongo: load template %q: %w", path, err)
	}

	e.logger.Debug().Str("template", path).Msg("Template loaded")
	e.templates[path] = tmpl
	return tmpl, nil
}

type emptyFS struct{}

func (emptyFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

func isTemplateContent(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%")
}

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}

func convertToContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return convertMapToContext(map[string]any(v))
	case map[string]any:
		return convertMapToContext(v)
	default:
		m, err := jsonToMap(v)
		if err != nil {
			return nil, err
		}
		return convertMapToContext(m)
	}
}

func convertMapToContext(in map[string]any) (pongo2.Context, error) {
	out := make(pongo2.Context, len(in))
	for key, value := range in {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

// convertValue normalises data to maps and slices. Form model values and
// assigners keep their type so the form tags can use them directly.
func convertValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if isCallable(value) {
		return value, nil
	}

	switch v := value.(type) {
	case model.Form, *model.Form, model.Field, *model.Field, model.BoundField, model.ErrorList, *assign.Assigner:
		return v, nil
	case pongo2.Context:
		return convertMap(map[string]any(v))
	case map[string]any:
		return convertMap(v)
	case []any:
		return convertSlice(v)
	default:
		raw, err := jsonToAny(v)
		if err != nil {
			return nil, err
		}
		switch decoded := raw.(type) {
		case map[string]any:
			return convertMap(decoded)
		case []any:
			return convertSlice(decoded)
		default:
			return decoded, nil
		}
	}
}

func convertMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, value := range in {
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func convertSlice(in []any) ([]any, error) {
	out := make([]any, 0, len(in))
	for _, value := range in {
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func jsonToMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func jsonToAny(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("lowerfirst") {
		_ = pongo2.RegisterFilter("lowerfirst", filterLowerFirst)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

func filterLowerFirst(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	t := in.String()

	offset := len(t) - len(strings.TrimLeft(t, " \t\n\r"))
	if offset == len(t) {
		return pongo2.AsValue(t), nil
	}
	first, size := utf8.DecodeRuneInString(t[offset:])
	return pongo2.AsValue(t[:offset] + strings.ToLower(string(first)) + t[offset+size:]), nil
}

package components

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-formtags/pkg/model"
	"github.com/goliatone/go-formtags/pkg/render"
)

// Fragment renders fields through a registry and wraps each control with its
// label, help text and errors. Hidden fields render the bare control.
type Fragment struct {
	registry *Registry
	template render.StringRenderer

	mu   sync.Mutex
	used map[string]struct{}
}

var _ render.Fragment = (*Fragment)(nil)

// NewFragment returns a fragment backed by registry, or the default registry
// when nil. engine is only needed by template components.
func NewFragment(registry *Registry, engine render.StringRenderer) *Fragment {
	if registry == nil {
		registry = NewDefaultRegistry()
	}
	return &Fragment{
		registry: registry,
		template: engine,
		used:     make(map[string]struct{}),
	}
}

// RenderField implements render.Fragment.
func (f *Fragment) RenderField(ctx context.Context, field model.Field) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := ResolveName(field)
	descriptor, ok := f.registry.Descriptor(name)
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", name, field.Name)
	}

	config, err := parseConfig(field.Metadata[ConfigMetadataKey])
	if err != nil {
		return "", fmt.Errorf("parse component config for field %q: %w", field.Name, err)
	}

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, field, ComponentData{Template: f.template, Config: config}); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", name, field.Name, err)
	}

	f.mu.Lock()
	f.used[name] = struct{}{}
	f.mu.Unlock()

	if field.IsHidden() {
		return control.String(), nil
	}
	return buildFieldMarkup(field, name, control.String()), nil
}

// Used returns the components rendered so far, sorted.
func (f *Fragment) Used() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.used))
	for name := range f.used {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Stylesheets returns the stylesheets of the components rendered so far.
func (f *Fragment) Stylesheets() []string {
	return f.registry.Stylesheets(f.Used())
}

func buildFieldMarkup(field model.Field, componentName, control string) string {
	var builder strings.Builder
	builder.Grow(len(control) + 256)

	builder.WriteString(`<div class="formtags-field`)
	if cls := SanitizeClassList(field.Metadata["class"]); cls != "" {
		builder.WriteByte(' ')
		builder.WriteString(html.EscapeString(cls))
	}
	if len(field.Errors) > 0 {
		builder.WriteString(` formtags-field--invalid`)
	}
	builder.WriteString(`" data-component="`)
	builder.WriteString(html.EscapeString(componentName))
	builder.WriteString("\">\n")

	if shouldRenderLabel(field) {
		builder.WriteString(`    <label for="`)
		builder.WriteString(html.EscapeString(field.ID()))
		builder.WriteString(`">`)
		builder.WriteString(html.EscapeString(field.Label))
		if field.Required {
			builder.WriteString(` *`)
		}
		builder.WriteString("</label>\n")
	}

	for _, line := range strings.Split(control, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		builder.WriteString("    ")
		builder.WriteString(line)
		builder.WriteByte('\n')
	}

	if help := field.HelpHTML(); help != "" {
		builder.WriteString(`    <small class="formtags-help">`)
		builder.WriteString(help)
		builder.WriteString("</small>\n")
	}

	if len(field.Errors) > 0 {
		builder.WriteString(`    <ul class="formtags-errors">`)
		for _, msg := range field.Errors {
			builder.WriteString(`<li>`)
			builder.WriteString(html.EscapeString(msg))
			builder.WriteString(`</li>`)
		}
		builder.WriteString("</ul>\n")
	}

	builder.WriteString("</div>")
	return builder.String()
}

func shouldRenderLabel(field model.Field) bool {
	if strings.TrimSpace(field.Label) == "" {
		return false
	}
	return strings.TrimSpace(field.Metadata["hideLabel"]) != "true"
}

func parseConfig(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var cfg map[string]any
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SanitizeClassList drops empty tokens and the reserved "fg-" and
// "formtags-" prefixes from a user supplied class list.
func SanitizeClassList(value string) string {
	tokens := strings.Fields(value)
	keep := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if strings.HasPrefix(token, "fg-") || strings.HasPrefix(token, "formtags-") {
			continue
		}
		keep = append(keep, token)
	}
	return strings.Join(keep, " ")
}

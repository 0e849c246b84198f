package components

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-formtags/pkg/model"
	"github.com/goliatone/go-formtags/pkg/render"
)

// Renderer writes the control markup for a field into buf.
type Renderer func(buf *bytes.Buffer, field model.Field, data ComponentData) error

// ComponentData carries helpers and configuration for component renderers.
type ComponentData struct {
	Template render.StringRenderer
	Config   map[string]any
}

// Descriptor bundles a renderer with the stylesheets it depends on.
type Descriptor struct {
	Name        string
	Renderer    Renderer
	Stylesheets []string
}

// Registry tracks component descriptors keyed by name.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		components: make(map[string]Descriptor),
	}
}

// Clone returns a copy that can be mutated independently.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := New()
	for name, descriptor := range r.components {
		cloned.components[name] = cloneDescriptor(descriptor)
	}
	return cloned
}

// Register associates a descriptor with the name. Existing entries are
// replaced.
func (r *Registry) Register(name string, descriptor Descriptor) error {
	if name = normalize(name); name == "" {
		return fmt.Errorf("components: component name is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("components: renderer for %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	descriptor.Name = name
	r.components[name] = cloneDescriptor(descriptor)
	return nil
}

// MustRegister panics when Register fails.
func (r *Registry) MustRegister(name string, descriptor Descriptor) {
	if err := r.Register(name, descriptor); err != nil {
		panic(err)
	}
}

// RegisterTemplate registers a component rendered from inline template
// source. The template sees the bound field as "field" and the component
// config as "config".
func (r *Registry) RegisterTemplate(name, source string) error {
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("components: template for %q is empty", name)
	}
	return r.Register(name, Descriptor{Renderer: templateRenderer(name, source)})
}

// Descriptor fetches a descriptor by name.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.components[normalize(name)]
	if !ok {
		return Descriptor{}, false
	}
	return cloneDescriptor(descriptor), true
}

// Names returns the registered component names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Stylesheets resolves the unique stylesheets of the named components in
// order of first appearance.
func (r *Registry) Stylesheets(names []string) []string {
	if len(names) == 0 {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, name := range names {
		descriptor, ok := r.components[normalize(name)]
		if !ok {
			continue
		}
		for _, href := range descriptor.Stylesheets {
			if href == "" {
				continue
			}
			if _, exists := seen[href]; exists {
				continue
			}
			seen[href] = struct{}{}
			out = append(out, href)
		}
	}
	return out
}

func templateRenderer(name, source string) Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", name)
		}
		rendered, err := data.Template.RenderString(source, map[string]any{
			"field":  field.Context(),
			"config": data.Config,
		})
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", name, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

func cloneDescriptor(src Descriptor) Descriptor {
	return Descriptor{
		Name:        src.Name,
		Renderer:    src.Renderer,
		Stylesheets: slices.Clone(src.Stylesheets),
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

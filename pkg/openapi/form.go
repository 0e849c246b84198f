package openapi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formtags/pkg/model"
)

// Extension keys read from property schemas.
const (
	ExtensionOrder       = "x-formtags-order"
	ExtensionWidget      = "x-formtags-widget"
	ExtensionHidden      = "x-formtags-hidden"
	ExtensionLabel       = "x-formtags-label"
	ExtensionPlaceholder = "x-formtags-placeholder"
	ExtensionGroup       = "x-formtags-group"
	ExtensionMetadata    = "x-formtags-metadata"
)

var requestMediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// Operation summarises an operation of a document.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
}

// LoadForm reads the document at path (a file or an http(s) URL) and builds
// the form of operationID.
func LoadForm(ctx context.Context, path, operationID string) (model.Form, error) {
	src, err := ParseSource(path)
	if err != nil {
		return model.Form{}, err
	}
	return NewLoader(WithHTTPFallback(0)).LoadForm(ctx, src, operationID)
}

// LoadForm loads src and builds the form of operationID.
func (l *Loader) LoadForm(ctx context.Context, src Source, operationID string) (model.Form, error) {
	data, err := l.Load(ctx, src)
	if err != nil {
		return model.Form{}, err
	}
	return FormFromData(ctx, data, operationID)
}

// Operations lists the operations of a document sorted by ID. Operations
// without an operationId are named "<method>:<path>".
func Operations(ctx context.Context, data []byte) ([]Operation, error) {
	doc, err := parse(ctx, data)
	if err != nil {
		return nil, err
	}
	var out []Operation
	eachOperation(doc, func(method, path string, op *openapi3.Operation) bool {
		out = append(out, Operation{ID: operationID(method, path, op), Method: method, Path: path, Summary: op.Summary})
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FormFromData parses an OpenAPI document and maps the request body of
// operationID to a form. Nested objects are flattened into dotted field
// names.
func FormFromData(ctx context.Context, data []byte, id string) (model.Form, error) {
	doc, err := parse(ctx, data)
	if err != nil {
		return model.Form{}, err
	}

	var (
		found  *openapi3.Operation
		method string
		path   string
	)
	eachOperation(doc, func(m, p string, op *openapi3.Operation) bool {
		if operationID(m, p, op) == id {
			found, method, path = op, m, p
			return false
		}
		return true
	})
	if found == nil {
		return model.Form{}, fmt.Errorf("openapi: operation %q not found", id)
	}

	schema := requestSchema(found.RequestBody)
	if schema == nil {
		return model.Form{}, fmt.Errorf("openapi: operation %q has no request body schema", id)
	}

	form := model.Form{
		Name:   id,
		Action: path,
		Method: strings.ToLower(method),
	}
	if found.Summary != "" {
		form.Metadata = map[string]string{"summary": found.Summary}
	}
	form.Fields = collectFields(schema, "", map[*openapi3.Schema]bool{})
	return form, nil
}

func parse(ctx context.Context, data []byte) (*openapi3.T, error) {
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate: %w", err)
	}
	return doc, nil
}

// eachOperation visits operations in path order; fn returns false to stop.
func eachOperation(doc *openapi3.T, fn func(method, path string, op *openapi3.Operation) bool) {
	if doc.Paths == nil {
		return
	}
	paths := doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for path := range paths {
		keys = append(keys, path)
	}
	sort.Strings(keys)

	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		for _, entry := range []struct {
			method string
			op     *openapi3.Operation
		}{
			{"GET", item.Get}, {"PUT", item.Put}, {"POST", item.Post}, {"DELETE", item.Delete},
			{"PATCH", item.Patch}, {"HEAD", item.Head}, {"OPTIONS", item.Options}, {"TRACE", item.Trace},
		} {
			if entry.op == nil {
				continue
			}
			if !fn(entry.method, path, entry.op) {
				return
			}
		}
	}
}

func operationID(method, path string, op *openapi3.Operation) string {
	if op.OperationID != "" {
		return op.OperationID
	}
	return strings.ToLower(method) + ":" + path
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range requestMediaTypes {
		if mt, ok := content[mediaType]; ok && mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

type property struct {
	name     string
	schema   *openapi3.Schema
	required bool
	order    float64
	hasOrder bool
}

// properties merges a schema's own properties with those of its allOf
// members.
func properties(schema *openapi3.Schema) []property {
	required := make(map[string]bool)
	byName := make(map[string]*openapi3.Schema)

	var visit func(s *openapi3.Schema)
	visit = func(s *openapi3.Schema) {
		if s == nil {
			return
		}
		for _, name := range s.Required {
			required[name] = true
		}
		for name, ref := range s.Properties {
			if ref != nil && ref.Value != nil {
				byName[name] = ref.Value
			}
		}
		for _, member := range s.AllOf {
			if member != nil {
				visit(member.Value)
			}
		}
	}
	visit(schema)

	out := make([]property, 0, len(byName))
	for name, s := range byName {
		p := property{name: name, schema: s, required: required[name]}
		p.order, p.hasOrder = number(s.Extensions[ExtensionOrder])
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.hasOrder && b.hasOrder && a.order != b.order:
			return a.order < b.order
		case a.hasOrder != b.hasOrder:
			return a.hasOrder
		default:
			return a.name < b.name
		}
	})
	return out
}

func collectFields(schema *openapi3.Schema, prefix string, seen map[*openapi3.Schema]bool) []model.Field {
	if schema == nil || seen[schema] {
		return nil
	}
	seen[schema] = true
	defer delete(seen, schema)

	props := properties(schema)
	var fields []model.Field
	for _, p := range props {
		name := p.name
		if prefix != "" {
			name = prefix + "." + p.name
		}
		if isObject(p.schema) {
			fields = append(fields, collectFields(p.schema, name, seen)...)
			continue
		}
		fields = append(fields, fieldFor(name, p))
	}
	return fields
}

func fieldFor(name string, p property) model.Field {
	s := p.schema
	field := model.Field{
		Name:     name,
		Label:    s.Title,
		Type:     fieldType(s),
		Format:   s.Format,
		Required: p.required,
		HelpText: s.Description,
		Value:    s.Default,
	}
	if field.Type == model.FieldTypeString && s.MaxLength != nil && *s.MaxLength > 255 {
		field.Type = model.FieldTypeText
	}

	enum := s.Enum
	if s.Items != nil && s.Items.Value != nil && len(s.Items.Value.Enum) > 0 {
		enum = s.Items.Value.Enum
		field.Multiple = true
	}
	for _, value := range enum {
		text := fmt.Sprint(value)
		field.Choices = append(field.Choices, model.Choice{Value: text, Label: text})
	}

	ext := s.Extensions
	if label, ok := ext[ExtensionLabel].(string); ok && label != "" {
		field.Label = label
	}
	if widget, ok := ext[ExtensionWidget].(string); ok && widget != "" {
		field.Widget = widget
	}
	if placeholder, ok := ext[ExtensionPlaceholder].(string); ok {
		field.Placeholder = placeholder
	}
	if hidden, ok := ext[ExtensionHidden].(bool); ok {
		field.Hidden = hidden
	}

	metadata := map[string]string{}
	if group, ok := ext[ExtensionGroup].(string); ok && group != "" {
		metadata["group"] = group
	}
	if extra, ok := ext[ExtensionMetadata].(map[string]any); ok {
		for key, value := range extra {
			metadata[key] = fmt.Sprint(value)
		}
	}
	if p.hasOrder {
		metadata["order"] = strconv.FormatFloat(p.order, 'f', -1, 64)
	}
	if len(metadata) > 0 {
		field.Metadata = metadata
	}
	return field
}

func isObject(s *openapi3.Schema) bool {
	if s == nil {
		return false
	}
	if s.Type != nil && s.Type.Is("object") {
		return true
	}
	return s.Type == nil && (len(s.Properties) > 0 || len(s.AllOf) > 0)
}

func fieldType(s *openapi3.Schema) model.FieldType {
	if s.Type == nil {
		return model.FieldTypeString
	}
	switch {
	case s.Type.Is("integer"):
		return model.FieldTypeInteger
	case s.Type.Is("number"):
		return model.FieldTypeNumber
	case s.Type.Is("boolean"):
		return model.FieldTypeBoolean
	case s.Type.Is("array"):
		return model.FieldTypeArray
	default:
		return model.FieldTypeString
	}
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, !math.IsNaN(v)
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

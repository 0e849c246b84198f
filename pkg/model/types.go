package model

import "strings"

// FieldType is the simplified enum for form-friendly field kinds.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeText    FieldType = "text"
	FieldTypeInteger FieldType = "integer"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeArray   FieldType = "array"
)

// Choice is a selectable option. A choice carrying nested Choices is an
// option group: its Label names the group and its Value is ignored.
type Choice struct {
	Value   string   `json:"value,omitempty" yaml:"value,omitempty"`
	Label   string   `json:"label,omitempty" yaml:"label,omitempty"`
	Choices []Choice `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// IsGroup reports whether the choice is an option group.
func (c Choice) IsGroup() bool {
	return len(c.Choices) > 0
}

// Field models an individual input inside a form. Matchers only look at Name;
// everything else is consumed by widgets and templates.
type Field struct {
	Name        string            `json:"name" yaml:"name"`
	Label       string            `json:"label,omitempty" yaml:"label,omitempty"`
	Type        FieldType         `json:"type,omitempty" yaml:"type,omitempty"`
	Format      string            `json:"format,omitempty" yaml:"format,omitempty"`
	Widget      string            `json:"widget,omitempty" yaml:"widget,omitempty"`
	Required    bool              `json:"required,omitempty" yaml:"required,omitempty"`
	Hidden      bool              `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Multiple    bool              `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Placeholder string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelpText    string            `json:"helpText,omitempty" yaml:"helpText,omitempty"`
	Value       any               `json:"value,omitempty" yaml:"value,omitempty"`
	Choices     []Choice          `json:"choices,omitempty" yaml:"choices,omitempty"`
	Errors      []string          `json:"errors,omitempty" yaml:"errors,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Form is the top-level representation renderers and tags consume.
type Form struct {
	Name     string            `json:"name,omitempty" yaml:"name,omitempty"`
	Action   string            `json:"action,omitempty" yaml:"action,omitempty"`
	Method   string            `json:"method,omitempty" yaml:"method,omitempty"`
	Fields   []Field           `json:"fields" yaml:"fields"`
	Initial  map[string]any    `json:"initial,omitempty" yaml:"initial,omitempty"`
	Errors   []string          `json:"errors,omitempty" yaml:"errors,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// IsHidden reports whether the field renders as a hidden input.
func (f Field) IsHidden() bool {
	return f.Hidden || f.Widget == WidgetHiddenInput
}

// ID returns the DOM id used by the default widget markup and labels.
func (f Field) ID() string {
	return "fg-" + f.Name
}

// FlatChoices returns the choices with option groups flattened.
func (f Field) FlatChoices() []Choice {
	var out []Choice
	for _, choice := range f.Choices {
		if choice.IsGroup() {
			out = append(out, choice.Choices...)
			continue
		}
		out = append(out, choice)
	}
	return out
}

// Field returns the field with the given name.
func (f Form) Field(name string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// VisibleFields returns the non-hidden fields in declaration order, with
// values resolved against Initial.
func (f Form) VisibleFields() []Field {
	out := make([]Field, 0, len(f.Fields))
	for _, field := range f.Fields {
		if field.IsHidden() {
			continue
		}
		out = append(out, f.bind(field))
	}
	return out
}

// HiddenFields returns the hidden fields in declaration order, with values
// resolved against Initial.
func (f Form) HiddenFields() []Field {
	var out []Field
	for _, field := range f.Fields {
		if field.IsHidden() {
			out = append(out, f.bind(field))
		}
	}
	return out
}

// ValueOf returns the field's own value, falling back to the form's initial
// data.
func (f Form) ValueOf(field Field) any {
	if field.Value != nil {
		return field.Value
	}
	if f.Initial == nil {
		return nil
	}
	return f.Initial[field.Name]
}

func (f Form) bind(field Field) Field {
	field.Value = f.ValueOf(field)
	return field
}

// WithValues returns a copy whose field values are replaced by the supplied
// values. Keys are field names; unknown keys are ignored.
func (f Form) WithValues(values map[string]any) Form {
	if len(values) == 0 {
		return f
	}
	out := f
	out.Fields = make([]Field, len(f.Fields))
	for i, field := range f.Fields {
		if value, ok := values[field.Name]; ok {
			field.Value = value
		}
		out.Fields[i] = field
	}
	return out
}

// WithErrors returns a copy carrying the supplied field and form level
// messages. Field messages are appended to existing ones.
func (f Form) WithErrors(fields map[string][]string, form []string) Form {
	if len(fields) == 0 && len(form) == 0 {
		return f
	}
	out := f
	out.Fields = make([]Field, len(f.Fields))
	for i, field := range f.Fields {
		if messages := fields[field.Name]; len(messages) > 0 {
			field.Errors = append(append([]string(nil), field.Errors...), messages...)
		}
		out.Fields[i] = field
	}
	if len(form) > 0 {
		out.Errors = append(append([]string(nil), f.Errors...), form...)
	}
	return out
}

// Names returns the field names in order.
func Names(fields []Field) []string {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, field.Name)
	}
	return out
}

func normalizeName(name string) string {
	return strings.TrimSpace(name)
}

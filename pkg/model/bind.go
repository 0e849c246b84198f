package model

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// BoundFieldKey holds the typed Field inside the map returned by
// Field.Context so filters can recover it without a JSON round trip.
const BoundFieldKey = "__field"

// BoundField is the template-facing view of a field. Printed on its own it
// renders the field's widget markup.
type BoundField map[string]any

// String returns the widget markup of the bound field.
func (b BoundField) String() string {
	field, ok := b[BoundFieldKey].(Field)
	if !ok {
		return ""
	}
	return field.HTML()
}

// ErrorList holds a field's messages. Printed on its own it renders an
// escaped `<ul class="errorlist">`, or nothing when empty.
type ErrorList []string

func (e ErrorList) String() string {
	if len(e) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<ul class="errorlist">`)
	for _, msg := range e {
		b.WriteString(`<li>`)
		b.WriteString(html.EscapeString(msg))
		b.WriteString(`</li>`)
	}
	b.WriteString(`</ul>`)
	return b.String()
}

// Context returns the template-facing view of the field. Keys follow the
// Django bound field attribute names.
func (f Field) Context() BoundField {
	choices := make([]map[string]any, 0, len(f.Choices))
	for _, choice := range f.Choices {
		choices = append(choices, choiceContext(choice))
	}
	return BoundField{
		"name":        f.Name,
		"html_name":   f.Name,
		"id":          f.ID(),
		"auto_id":     f.ID(),
		"label":       f.Label,
		"type":        string(f.Type),
		"value":       f.Value,
		"required":    f.Required,
		"is_hidden":   f.IsHidden(),
		"errors":      ErrorList(f.Errors),
		"help_text":   f.HelpText,
		"placeholder": f.Placeholder,
		"widget_type": f.WidgetName(),
		"choices":     choices,
		"metadata":    f.Metadata,
		BoundFieldKey: f,
	}
}

func choiceContext(choice Choice) map[string]any {
	out := map[string]any{
		"value": choice.Value,
		"label": choice.Label,
	}
	if choice.IsGroup() {
		nested := make([]map[string]any, 0, len(choice.Choices))
		for _, option := range choice.Choices {
			nested = append(nested, choiceContext(option))
		}
		out["choices"] = nested
	}
	return out
}

// FieldFrom coerces template values back into a Field. It accepts typed
// fields, pointers, bound field maps and plain maps using the JSON field
// names.
func FieldFrom(value any) (Field, error) {
	switch v := value.(type) {
	case nil:
		return Field{}, fmt.Errorf("model: nil field value")
	case Field:
		return v, nil
	case *Field:
		if v == nil {
			return Field{}, fmt.Errorf("model: nil field pointer")
		}
		return *v, nil
	case BoundField:
		if bound, ok := v[BoundFieldKey].(Field); ok {
			return bound, nil
		}
		return FieldFrom(map[string]any(v))
	case map[string]any:
		if bound, ok := v[BoundFieldKey].(Field); ok {
			return bound, nil
		}
		var field Field
		if err := remarshal(v, &field); err != nil {
			return Field{}, fmt.Errorf("model: decode field map: %w", err)
		}
		return field, nil
	default:
		return Field{}, fmt.Errorf("model: unsupported field type %T", value)
	}
}

// FormFrom coerces template values into a Form. Maps and other structs are
// decoded through their JSON representation.
func FormFrom(value any) (Form, error) {
	switch v := value.(type) {
	case nil:
		return Form{}, fmt.Errorf("model: nil form value")
	case Form:
		return v, nil
	case *Form:
		if v == nil {
			return Form{}, fmt.Errorf("model: nil form pointer")
		}
		return *v, nil
	default:
		var form Form
		if err := remarshal(v, &form); err != nil {
			return Form{}, fmt.Errorf("model: decode form %T: %w", value, err)
		}
		return form, nil
	}
}

func remarshal(in any, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, out)
}

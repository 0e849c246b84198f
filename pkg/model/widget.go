package model

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Widget names follow the Django widget class names templates compare against
// with the widget_name filter.
const (
	WidgetTextInput      = "TextInput"
	WidgetNumberInput    = "NumberInput"
	WidgetEmailInput     = "EmailInput"
	WidgetPasswordInput  = "PasswordInput"
	WidgetDateInput      = "DateInput"
	WidgetTextarea       = "Textarea"
	WidgetCheckboxInput  = "CheckboxInput"
	WidgetSelect         = "Select"
	WidgetSelectMultiple = "SelectMultiple"
	WidgetHiddenInput    = "HiddenInput"

	WidgetRadioSelect            = "RadioSelect"
	WidgetCheckboxSelectMultiple = "CheckboxSelectMultiple"
)

var (
	helpPolicyOnce sync.Once
	helpPolicy     *bluemonday.Policy
)

// WidgetName returns the explicit widget, or one derived from the field's
// hidden flag, choices, type and format.
func (f Field) WidgetName() string {
	if widget := strings.TrimSpace(f.Widget); widget != "" {
		return widget
	}
	if f.Hidden {
		return WidgetHiddenInput
	}
	if len(f.Choices) > 0 {
		if f.Multiple || f.Type == FieldTypeArray {
			return WidgetSelectMultiple
		}
		return WidgetSelect
	}
	switch f.Type {
	case FieldTypeText:
		return WidgetTextarea
	case FieldTypeInteger, FieldTypeNumber:
		return WidgetNumberInput
	case FieldTypeBoolean:
		return WidgetCheckboxInput
	}
	switch strings.ToLower(strings.TrimSpace(f.Format)) {
	case "email":
		return WidgetEmailInput
	case "password":
		return WidgetPasswordInput
	case "date":
		return WidgetDateInput
	case "textarea":
		return WidgetTextarea
	}
	return WidgetTextInput
}

// Selected reports whether value is one of the field's current values.
func (f Field) Selected(value string) bool {
	for _, candidate := range ValueStrings(f.Value) {
		if candidate == value {
			return true
		}
	}
	return false
}

// HelpHTML returns the help text sanitised for direct inclusion in markup.
func (f Field) HelpHTML() string {
	trimmed := strings.TrimSpace(f.HelpText)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(helpSanitizer().Sanitize(trimmed))
}

// HTML renders the default widget markup for the field. Attribute values and
// text content are escaped.
func (f Field) HTML() string {
	var builder strings.Builder
	builder.Grow(128)

	switch widget := f.WidgetName(); widget {
	case WidgetTextarea:
		builder.WriteString(`<textarea`)
		f.writeCommonAttrs(&builder)
		builder.WriteString(`>`)
		builder.WriteString(html.EscapeString(firstValue(f.Value)))
		builder.WriteString(`</textarea>`)
	case WidgetSelect, WidgetSelectMultiple:
		builder.WriteString(`<select`)
		f.writeCommonAttrs(&builder)
		if widget == WidgetSelectMultiple {
			builder.WriteString(` multiple`)
		}
		builder.WriteString(`>`)
		for _, choice := range f.Choices {
			if choice.IsGroup() {
				builder.WriteString(`<optgroup label="`)
				builder.WriteString(html.EscapeString(choice.Label))
				builder.WriteString(`">`)
				for _, option := range choice.Choices {
					f.writeOption(&builder, option)
				}
				builder.WriteString(`</optgroup>`)
				continue
			}
			f.writeOption(&builder, choice)
		}
		builder.WriteString(`</select>`)
	case WidgetRadioSelect, WidgetCheckboxSelectMultiple:
		kind := "radio"
		if widget == WidgetCheckboxSelectMultiple {
			kind = "checkbox"
		}
		builder.WriteString(`<div id="`)
		builder.WriteString(html.EscapeString(f.ID()))
		builder.WriteString(`">`)
		for i, choice := range f.FlatChoices() {
			id := fmt.Sprintf("%s_%d", f.ID(), i)
			builder.WriteString(`<label for="`)
			builder.WriteString(html.EscapeString(id))
			builder.WriteString(`"><input type="`)
			builder.WriteString(kind)
			builder.WriteString(`" name="`)
			builder.WriteString(html.EscapeString(f.Name))
			builder.WriteString(`" id="`)
			builder.WriteString(html.EscapeString(id))
			builder.WriteString(`" value="`)
			builder.WriteString(html.EscapeString(choice.Value))
			builder.WriteString(`"`)
			if f.Selected(choice.Value) {
				builder.WriteString(` checked`)
			}
			builder.WriteString(`> `)
			label := choice.Label
			if label == "" {
				label = choice.Value
			}
			builder.WriteString(html.EscapeString(label))
			builder.WriteString(`</label>`)
		}
		builder.WriteString(`</div>`)
	case WidgetCheckboxInput:
		builder.WriteString(`<input type="checkbox"`)
		f.writeCommonAttrs(&builder)
		builder.WriteString(` value="true"`)
		if truthy(f.Value) {
			builder.WriteString(` checked`)
		}
		builder.WriteString(`>`)
	default:
		builder.WriteString(`<input type="`)
		builder.WriteString(inputType(widget))
		builder.WriteString(`"`)
		f.writeCommonAttrs(&builder)
		if widget != WidgetPasswordInput {
			if value := firstValue(f.Value); value != "" {
				builder.WriteString(` value="`)
				builder.WriteString(html.EscapeString(value))
				builder.WriteString(`"`)
			}
		}
		if placeholder := strings.TrimSpace(f.Placeholder); placeholder != "" && widget != WidgetHiddenInput {
			builder.WriteString(` placeholder="`)
			builder.WriteString(html.EscapeString(placeholder))
			builder.WriteString(`"`)
		}
		builder.WriteString(`>`)
	}
	return builder.String()
}

func (f Field) writeCommonAttrs(builder *strings.Builder) {
	builder.WriteString(` name="`)
	builder.WriteString(html.EscapeString(f.Name))
	builder.WriteString(`" id="`)
	builder.WriteString(html.EscapeString(f.ID()))
	builder.WriteString(`"`)
	if f.Required && !f.IsHidden() {
		builder.WriteString(` required`)
	}
	if len(f.Errors) > 0 {
		builder.WriteString(` aria-invalid="true"`)
	}
}

func (f Field) writeOption(builder *strings.Builder, choice Choice) {
	builder.WriteString(`<option value="`)
	builder.WriteString(html.EscapeString(choice.Value))
	builder.WriteString(`"`)
	if f.Selected(choice.Value) {
		builder.WriteString(` selected`)
	}
	builder.WriteString(`>`)
	label := choice.Label
	if label == "" {
		label = choice.Value
	}
	builder.WriteString(html.EscapeString(label))
	builder.WriteString(`</option>`)
}

func inputType(widget string) string {
	switch widget {
	case WidgetHiddenInput:
		return "hidden"
	case WidgetNumberInput:
		return "number"
	case WidgetEmailInput:
		return "email"
	case WidgetPasswordInput:
		return "password"
	case WidgetDateInput:
		return "date"
	default:
		return "text"
	}
}

// ValueStrings flattens a field value into its string representations.
// Slices yield one entry per element; nil yields none.
func ValueStrings(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}

func firstValue(value any) string {
	values := ValueStrings(value)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "0", "false", "off", "no":
			return false
		}
		return true
	default:
		text := firstValue(v)
		return text != "" && text != "0"
	}
}

func helpSanitizer() *bluemonday.Policy {
	helpPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.RequireNoFollowOnLinks(true)
		helpPolicy = policy
	})
	return helpPolicy
}

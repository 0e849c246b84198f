package tags

import (
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formtags/pkg/model"
)

func filterFuncs() map[string]pongo2.FilterFunction {
	return map[string]pongo2.FilterFunction{
		"widget_name": filterWidgetName,
		"widget":      filterWidget,
		"help_html":   filterHelpHTML,
	}
}

// boundField recovers the field behind a template value. The first pass
// evaluates bodies without a bound field, so failures yield ok=false rather
// than an error.
func boundField(in *pongo2.Value) (model.Field, bool) {
	if in == nil || in.IsNil() {
		return model.Field{}, false
	}
	field, err := model.FieldFrom(in.Interface())
	if err != nil {
		return model.Field{}, false
	}
	return field, true
}

// filterWidgetName returns the field's widget name, or, given a space
// separated list of names, whether the widget is one of them.
func filterWidgetName(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	field, ok := boundField(in)
	name := ""
	if ok {
		name = field.WidgetName()
	}

	if param == nil || param.IsNil() || strings.TrimSpace(param.String()) == "" {
		return pongo2.AsValue(name), nil
	}
	for _, candidate := range strings.Fields(param.String()) {
		if ok && candidate == name {
			return pongo2.AsValue(true), nil
		}
	}
	return pongo2.AsValue(false), nil
}

func filterWidget(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	field, ok := boundField(in)
	if !ok {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsSafeValue(field.HTML()), nil
}

func filterHelpHTML(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	field, ok := boundField(in)
	if !ok {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsSafeValue(field.HelpHTML()), nil
}

package components

import (
	"bytes"

	"github.com/goliatone/go-formtags/pkg/model"
)

// NewDefaultRegistry returns a registry holding the built-in components. All
// of them emit the field's default widget markup.
func NewDefaultRegistry() *Registry {
	registry := New()
	for _, name := range []string{NameInput, NameTextarea, NameSelect, NameCheckbox, NameRadio, NameCheckboxList, NameHidden} {
		registry.MustRegister(name, Descriptor{Renderer: widgetRenderer})
	}
	return registry
}

func widgetRenderer(buf *bytes.Buffer, field model.Field, _ ComponentData) error {
	buf.WriteString(field.HTML())
	return nil
}

// ResolveName returns the component for a field: the metadata override when
// present, otherwise the component matching its widget.
func ResolveName(field model.Field) string {
	if name := normalize(field.Metadata[MetadataKey]); name != "" {
		return name
	}
	switch field.WidgetName() {
	case model.WidgetTextarea:
		return NameTextarea
	case model.WidgetSelect, model.WidgetSelectMultiple:
		return NameSelect
	case model.WidgetCheckboxInput:
		return NameCheckbox
	case model.WidgetRadioSelect:
		return NameRadio
	case model.WidgetCheckboxSelectMultiple:
		return NameCheckboxList
	case model.WidgetHiddenInput:
		return NameHidden
	default:
		return NameInput
	}
}

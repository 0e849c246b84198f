package components

// Canonical component names used by the default registry.
const (
	NameInput        = "input"
	NameTextarea     = "textarea"
	NameSelect       = "select"
	NameCheckbox     = "checkbox"
	NameRadio        = "radio"
	NameCheckboxList = "checkbox_list"
	NameHidden       = "hidden"
)

// MetadataKey selects a component explicitly, overriding the widget mapping.
const MetadataKey = "component"

// ConfigMetadataKey holds a JSON object passed to the component as config.
const ConfigMetadataKey = "componentConfig"

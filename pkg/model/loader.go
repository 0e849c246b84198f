package model

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DecodeForm parses a YAML or JSON form fixture. Field names must be present
// and unique.
func DecodeForm(data []byte) (Form, error) {
	if len(data) == 0 {
		return Form{}, errors.New("model: form payload is empty")
	}
	var form Form
	if err := yaml.Unmarshal(data, &form); err != nil {
		return Form{}, fmt.Errorf("model: decode form: %w", err)
	}
	if err := validateForm(form); err != nil {
		return Form{}, err
	}
	return form, nil
}

// LoadForm reads a form fixture from disk.
func LoadForm(path string) (Form, error) {
	if path == "" {
		return Form{}, errors.New("model: form path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Form{}, fmt.Errorf("model: read form: %w", err)
	}
	form, err := DecodeForm(data)
	if err != nil {
		return Form{}, fmt.Errorf("%w (%s)", err, path)
	}
	return form, nil
}

// LoadValues reads a YAML or JSON map of field values, as used to pre-populate
// a form before rendering.
func LoadValues(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: read values: %w", err)
	}
	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("model: decode values: %w", err)
	}
	return values, nil
}

func validateForm(form Form) error {
	seen := make(map[string]struct{}, len(form.Fields))
	for i, field := range form.Fields {
		name := normalizeName(field.Name)
		if name == "" {
			return fmt.Errorf("model: field %d has no name", i)
		}
		if name != field.Name {
			return fmt.Errorf("model: field name %q has surrounding whitespace", field.Name)
		}
		if _, exists := seen[name]; exists {
			return fmt.Errorf("model: duplicate field name %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

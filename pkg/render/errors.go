package render

import (
	"strings"

	"github.com/goliatone/go-formtags/pkg/model"
)

// ErrorMapping splits an error payload into field-level and form-level
// messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload assigns server error messages to the form's fields. Keys
// are matched against field names after stripping JSON pointer and dotted
// path wrappers ("/body/name", "$.name", "data.name"); keys that do not
// resolve to a field are treated as form-level so messages are not lost.
func MapErrorPayload(form model.Form, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	names := make(map[string]struct{}, len(form.Fields))
	for _, field := range form.Fields {
		names[field.Name] = struct{}{}
	}

	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		name, ok := resolveErrorKey(rawPath, names)
		if !ok {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[name] = append(mapping.Fields[name], normalized...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func resolveErrorKey(raw string, names map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", false
	}
	if _, ok := names[trimmed]; ok {
		return trimmed, true
	}

	segments := parsePathSegments(trimmed)
	segments = dropWrapperSegments(segments)
	if len(segments) == 0 {
		return "", false
	}
	if _, ok := names[segments[0]]; ok {
		return segments[0], true
	}
	return "", false
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = clean[1:]
	}
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	out := segments
	for len(out) > 0 {
		switch strings.ToLower(out[0]) {
		case "body", "request", "payload", "data", "attributes":
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}

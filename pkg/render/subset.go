package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-formtags/pkg/model"
)

// FieldSubset restricts rendering to fields carrying one of the listed
// groups or tags in their metadata ("group", "tags"). Tags may be a comma
// separated list or a JSON array.
type FieldSubset struct {
	Groups []string
	Tags   []string
}

// Empty reports whether the subset filters nothing.
func (s FieldSubset) Empty() bool {
	return newSubsetFilter(s).empty()
}

// ApplySubset returns a copy of the form without the fields that do not
// match the subset. Hidden fields are always kept so submissions still carry
// them. An empty subset returns the form unchanged.
func ApplySubset(form model.Form, subset FieldSubset) model.Form {
	filter := newSubsetFilter(subset)
	if filter.empty() {
		return form
	}

	out := form
	out.Fields = make([]model.Field, 0, len(form.Fields))
	for _, field := range form.Fields {
		if field.IsHidden() || filter.matches(field) {
			out.Fields = append(out.Fields, field)
		}
	}
	return out
}

type subsetFilter struct {
	groups map[string]struct{}
	tags   map[string]struct{}
}

func newSubsetFilter(subset FieldSubset) subsetFilter {
	return subsetFilter{
		groups: normaliseTokens(subset.Groups),
		tags:   normaliseTokens(subset.Tags),
	}
}

func (m subsetFilter) empty() bool {
	return len(m.groups) == 0 && len(m.tags) == 0
}

func (m subsetFilter) matches(field model.Field) bool {
	if len(m.groups) > 0 {
		if group := normaliseToken(field.Metadata["group"]); group != "" {
			if _, ok := m.groups[group]; ok {
				return true
			}
		}
	}
	for _, tag := range parseTokenList(field.Metadata["tags"]) {
		if _, ok := m.tags[tag]; ok {
			return true
		}
	}
	return false
}

func normaliseTokens(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	result := make(map[string]struct{}, len(values))
	for _, value := range values {
		token := normaliseToken(value)
		if token == "" {
			continue
		}
		result[token] = struct{}{}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func normaliseToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func parseTokenList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var parsed []any
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			tokens := make([]string, 0, len(parsed))
			for _, entry := range parsed {
				if token := normaliseToken(anyToString(entry)); token != "" {
					tokens = append(tokens, token)
				}
			}
			return dedupe(tokens)
		}
	}

	parts := strings.Split(raw, ",")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if token := normaliseToken(part); token != "" {
			tokens = append(tokens, token)
		}
	}
	return dedupe(tokens)
}

func anyToString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

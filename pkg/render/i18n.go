package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-formtags/pkg/model"
)

const (
	fieldLabelKeyHint       = "labelKey"
	fieldPlaceholderKeyHint = "placeholderKey"
	fieldHelpTextKeyHint    = "helpTextKey"
	choiceKeyPrefix         = "choiceKey."
)

// ErrMissingTranslator is passed to MissingTranslationHandler when a key
// needs translating but no Translator was configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Translator resolves message keys for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate calls fn.
func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// MissingTranslationHandler returns the string used when a key cannot be
// translated.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

func missingTranslationDefault(_ string, key string, args []any, _ error) string {
	for _, arg := range args {
		if values, ok := arg.(map[string]any); ok {
			if fallback, ok := values["default"].(string); ok && strings.TrimSpace(fallback) != "" {
				return fallback
			}
		}
	}
	return key
}

// LocalizeForm returns a copy of the form whose labels, help texts,
// placeholders and choice labels are translated according to the `*Key`
// hints in field metadata:
//
//	labelKey, helpTextKey, placeholderKey, choiceKey.<value>
//
// Failures go through opts.OnMissing; the default keeps the untranslated
// text, or the key when there is none.
func LocalizeForm(form model.Form, opts RenderOptions) model.Form {
	onMissing := opts.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	out := form
	out.Fields = make([]model.Field, len(form.Fields))
	for i, field := range form.Fields {
		out.Fields[i] = localizeField(field, opts.Locale, opts.Translator, onMissing)
	}
	return out
}

func localizeField(field model.Field, locale string, t Translator, onMissing MissingTranslationHandler) model.Field {
	if len(field.Metadata) == 0 {
		return field
	}

	if key := strings.TrimSpace(field.Metadata[fieldLabelKeyHint]); key != "" {
		field.Label = translate(locale, key, strings.TrimSpace(field.Label), t, onMissing)
	}
	if key := strings.TrimSpace(field.Metadata[fieldPlaceholderKeyHint]); key != "" {
		field.Placeholder = translate(locale, key, strings.TrimSpace(field.Placeholder), t, onMissing)
	}
	if key := strings.TrimSpace(field.Metadata[fieldHelpTextKeyHint]); key != "" {
		field.HelpText = translate(locale, key, strings.TrimSpace(field.HelpText), t, onMissing)
	}
	if len(field.Choices) > 0 {
		field.Choices = localizeChoices(field.Choices, field.Metadata, locale, t, onMissing)
	}
	return field
}

func localizeChoices(choices []model.Choice, metadata map[string]string, locale string, t Translator, onMissing MissingTranslationHandler) []model.Choice {
	out := make([]model.Choice, len(choices))
	for i, choice := range choices {
		if choice.IsGroup() {
			choice.Choices = localizeChoices(choice.Choices, metadata, locale, t, onMissing)
		} else if key := strings.TrimSpace(metadata[choiceKeyPrefix+choice.Value]); key != "" {
			choice.Label = translate(locale, key, strings.TrimSpace(choice.Label), t, onMissing)
		}
		out[i] = choice
	}
	return out
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, []any{map[string]any{"default": fallback}}, ErrMissingTranslator)
		}
		if strings.TrimSpace(fallback) != "" {
			return fallback
		}
		return key
	}

	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}

	if onMissing != nil {
		return onMissing(locale, key, []any{map[string]any{"default": fallback}}, err)
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

package render

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formtags/pkg/model"
)

// TemplateI18nConfig configures the translation helpers exposed to form
// templates.
type TemplateI18nConfig struct {
	// LocaleKey is read from map and form metadata locale sources. Defaults
	// to "locale".
	LocaleKey string
	// FuncName renames the translate helper.
	FuncName string
	OnMissing MissingTranslationHandler
}

// TemplateI18nFuncs returns the `translate(localeSrc, key, ...args)` and
// `current_locale(localeSrc)` helpers for pongo.WithTemplateFunc. A locale
// source is a locale string, a map holding the locale under LocaleKey, or a
// form whose metadata does.
func TemplateI18nFuncs(t Translator, cfg TemplateI18nConfig) map[string]any {
	key := strings.TrimSpace(cfg.LocaleKey)
	if key == "" {
		key = "locale"
	}
	name := strings.TrimSpace(cfg.FuncName)
	if name == "" {
		name = "translate"
	}
	onMissing := cfg.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	translateFn := func(localeSrc any, msgKey string, params ...any) string {
		msgKey = strings.TrimSpace(msgKey)
		if msgKey == "" {
			return ""
		}
		locale := localeOf(localeSrc, key)
		if t == nil {
			return onMissing(locale, msgKey, params, ErrMissingTranslator)
		}
		msg, err := t.Translate(locale, msgKey, params...)
		if err != nil || strings.TrimSpace(msg) == "" {
			return onMissing(locale, msgKey, params, err)
		}
		return msg
	}

	return map[string]any{
		name: translateFn,
		"current_locale": func(localeSrc any) string {
			return localeOf(localeSrc, key)
		},
	}
}

func localeOf(src any, key string) string {
	switch v := src.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case map[string]string:
		return strings.TrimSpace(v[key])
	case map[string]any:
		if raw, ok := v[key]; ok && raw != nil {
			return strings.TrimSpace(fmt.Sprint(raw))
		}
	case model.Form:
		return strings.TrimSpace(v.Metadata[key])
	case *model.Form:
		if v != nil {
			return strings.TrimSpace(v.Metadata[key])
		}
	}
	return ""
}

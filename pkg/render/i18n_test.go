package render_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formtags/pkg/model"
	"github.com/goliatone/go-formtags/pkg/render"
)

type stubTranslator map[string]string

func (t stubTranslator) Translate(_ string, key string, _ ...any) (string, error) {
	if msg, ok := t[key]; ok {
		return msg, nil
	}
	return "", errors.New("missing translation")
}

func TestLocalizeForm_UsesKeysAndFallbacks(t *testing.T) {
	form := model.Form{
		Fields: []model.Field{
			{
				Name:        "name",
				Label:       "Name",
				Placeholder: "Enter name",
				HelpText:    "Used for display",
				Metadata: map[string]string{
					"labelKey":       "fields.thing.name",
					"placeholderKey": "fields.thing.name.placeholder",
					"helpTextKey":    "fields.thing.name.help",
				},
			},
			{
				Name: "color",
				Choices: []model.Choice{
					{Value: "r", Label: "Red"},
					{Label: "Dark", Choices: []model.Choice{{Value: "b", Label: "Black"}}},
				},
				Metadata: map[string]string{
					"choiceKey.r": "colors.red",
					"choiceKey.b": "colors.black",
				},
			},
			{Name: "untouched", Label: "Untouched"},
		},
	}

	localized := render.LocalizeForm(form, render.RenderOptions{
		Locale: "es",
		Translator: stubTranslator{
			"fields.thing.name": "Nombre",
			"colors.red":        "Rojo",
			"colors.black":      "Negro",
		},
	})

	name := localized.Fields[0]
	if name.Label != "Nombre" {
		t.Fatalf("expected translated field label, got %q", name.Label)
	}
	if name.Placeholder != "Enter name" {
		t.Fatalf("expected placeholder to fall back, got %q", name.Placeholder)
	}
	if name.HelpText != "Used for display" {
		t.Fatalf("expected help text to fall back, got %q", name.HelpText)
	}

	want := []model.Choice{
		{Value: "r", Label: "Rojo"},
		{Label: "Dark", Choices: []model.Choice{{Value: "b", Label: "Negro"}}},
	}
	if diff := cmp.Diff(want, localized.Fields[1].Choices); diff != "" {
		t.Fatalf("choices mismatch (-want +got):\n%s", diff)
	}
	if localized.Fields[2].Label != "Untouched" {
		t.Fatalf("expected field without hints to be unchanged, got %q", localized.Fields[2].Label)
	}
	if form.Fields[0].Label != "Name" {
		t.Fatalf("expected source form to stay unchanged, got %q", form.Fields[0].Label)
	}
}

func TestLocalizeForm_MissingTranslatorUsesHandler(t *testing.T) {
	form := model.Form{Fields: []model.Field{{
		Name:     "title",
		Metadata: map[string]string{"labelKey": "fields.title"},
	}}}

	var gotErr error
	localized := render.LocalizeForm(form, render.RenderOptions{
		OnMissing: func(_ string, key string, _ []any, err error) string {
			gotErr = err
			return "[" + key + "]"
		},
	})

	if localized.Fields[0].Label != "[fields.title]" {
		t.Fatalf("expected handler output, got %q", localized.Fields[0].Label)
	}
	if !errors.Is(gotErr, render.ErrMissingTranslator) {
		t.Fatalf("expected ErrMissingTranslator, got %v", gotErr)
	}
}

func TestTemplateI18nFuncs(t *testing.T) {
	funcs := render.TemplateI18nFuncs(stubTranslator{"greeting": "Hola"}, render.TemplateI18nConfig{})

	translate, ok := funcs["translate"].(func(any, string, ...any) string)
	if !ok {
		t.Fatalf("expected translate helper, got %T", funcs["translate"])
	}
	if got := translate(map[string]any{"locale": "es"}, "greeting"); got != "Hola" {
		t.Fatalf("expected Hola, got %q", got)
	}
	if got := translate("es", "missing"); got != "missing" {
		t.Fatalf("expected key fallback, got %q", got)
	}

	locale, ok := funcs["current_locale"].(func(any) string)
	if !ok {
		t.Fatalf("expected current_locale helper, got %T", funcs["current_locale"])
	}
	if got := locale(map[string]string{"locale": "fr"}); got != "fr" {
		t.Fatalf("expected fr, got %q", got)
	}
}

func TestTemplateI18nFuncs_FormLocale(t *testing.T) {
	var gotLocale string
	translator := render.TranslatorFunc(func(locale, key string, _ ...any) (string, error) {
		gotLocale = locale
		return "Enviar", nil
	})
	funcs := render.TemplateI18nFuncs(translator, render.TemplateI18nConfig{FuncName: "t"})

	translate := funcs["t"].(func(any, string, ...any) string)
	form := model.Form{Metadata: map[string]string{"locale": "es"}}
	if got := translate(&form, "submit"); got != "Enviar" {
		t.Fatalf("expected Enviar, got %q", got)
	}
	if gotLocale != "es" {
		t.Fatalf("expected form locale, got %q", gotLocale)
	}
	if got := translate(form, " "); got != "" {
		t.Fatalf("expected blank key to render empty, got %q", got)
	}
}

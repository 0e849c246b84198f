package render

import "github.com/goliatone/go-formtags/pkg/model"

// RenderOptions describe per-request data renderers apply to the form before
// the field specs run. Use Prepare to apply them in the canonical order.
type RenderOptions struct {
	// Values pre-populates fields by name, overriding field values and the
	// form's initial data.
	Values map[string]any
	// Errors surfaces server-side validation feedback keyed by field name.
	// Keys that do not name a field (including "__all__" and
	// "non_field_errors") become form-level errors.
	Errors map[string][]string
	// Hidden adds hidden inputs (CSRF tokens, versions) rendered by the
	// hidden_fields tag.
	Hidden []HiddenField
	// Subset restricts the form to fields in the given groups or tags.
	Subset FieldSubset
	// Locale and Translator localise labels, help text and placeholders that
	// carry a *Key metadata entry.
	Locale     string
	Translator Translator
	OnMissing  MissingTranslationHandler
	// Template overrides the template a template-driven renderer uses.
	Template string
	// Data is merged into the template context next to "form".
	Data map[string]any
}

// Prepare applies the request data in opts to a copy of the form: subset,
// values, errors, hidden fields, then localisation.
func Prepare(form model.Form, opts RenderOptions) model.Form {
	out := ApplySubset(form, opts.Subset)
	out = out.WithValues(opts.Values)
	if len(opts.Errors) > 0 {
		mapping := MapErrorPayload(out, opts.Errors)
		out = out.WithErrors(mapping.Fields, mapping.Form)
		out.Errors = MergeFormErrors(out.Errors)
	}
	out = ApplyHiddenFields(out, opts.Hidden...)
	if opts.Translator != nil || opts.OnMissing != nil {
		out = LocalizeForm(out, opts)
	}
	return out
}

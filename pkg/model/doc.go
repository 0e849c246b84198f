// Package model defines the form and field types consumed by the matcher,
// the tag library and the renderers. A Form is an ordered list of Fields plus
// initial values and form-level errors; fields are split into visible and
// hidden sets the same way the template tags consume them. Fields expose a
// Django-compatible widget name (`TextInput`, `Select`, `HiddenInput`, ...),
// default widget markup, and a template-facing map built by Field.Context so
// pongo2 templates can address `field.name`, `field.label`, `field.errors`
// and friends. Forms can be decoded from YAML or JSON fixtures with
// DecodeForm/LoadForm.
package model

// Package template defines the template engine contract renderers build on.
// The pongo subpackage provides the pongo2 implementation with the form tags
// registered.
package template

// Package openapi builds forms from OpenAPI operations. Documents are parsed
// with kin-openapi and the request body schema of an operation becomes the
// form's fields.
package openapi

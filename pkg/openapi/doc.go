// Package openapi imports property schemas from OpenAPI 3 documents into a
// form specification, so one request body definition can drive both the API
// and the form's type and constraint checks. kin-openapi stays behind this
// package.
package openapi

//go:build tools

// Package tools pins build-time tool dependencies so `go mod tidy`
// keeps them in go.mod. swag generates the OpenAPI spec from the
// handler annotations.
package tools

import (
	_ "github.com/swaggo/swag"
)

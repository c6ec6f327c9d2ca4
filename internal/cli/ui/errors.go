// Package ui renders CLI output: colored diagnostics with source position
// markers for expression errors.
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/jsonata-lang/jsonata/compiler/errors"
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Expression string
	Err        error
	NoColor    bool
}

// FormatError renders an evaluation or parse error. Coded errors with a
// source position get a caret marker under the offending character.
//
// Example output:
//
//	error S0202: Expected `]`, got `}`
//	  a[0}
//	     ^
func FormatError(opts ErrorOptions) string {
	headerColor := color.New(color.FgRed, color.Bold)
	markerColor := color.New(color.FgYellow)
	if opts.NoColor {
		headerColor.DisableColor()
		markerColor.DisableColor()
	}

	var b strings.Builder

	coded, ok := opts.Err.(*errors.Error)
	if !ok {
		headerColor.Fprintf(&b, "error: %v\n", opts.Err)
		return b.String()
	}

	headerColor.Fprintf(&b, "error %s: %s\n", coded.Code, coded.Message)

	if coded.Position >= 0 && opts.Expression != "" {
		line, column := locate(opts.Expression, coded.Position)
		fmt.Fprintf(&b, "  %s\n", line)
		markerColor.Fprintf(&b, "  %s^\n", strings.Repeat(" ", column))
	}

	return b.String()
}

// locate extracts the source line containing the character offset and the
// column of the offset within it
func locate(expression string, offset int) (string, int) {
	runes := []rune(expression)
	if offset > len(runes) {
		offset = len(runes)
	}

	start := offset
	for start > 0 && runes[start-1] != '\n' {
		start--
	}
	end := offset
	for end < len(runes) && runes[end] != '\n' {
		end++
	}

	return string(runes[start:end]), offset - start
}

// Package diag defines the structured error type every compile failure is
// reported through. Errors carry a stable code, a human message, and the
// offending source position when one is known. They propagate uncaught to
// the caller: a unit either compiles completely or not at all.
package diag

import (
	"fmt"

	"github.com/agentic-research/promptc/internal/source"
)

// Error codes for structured error reporting.
const (
	CodeMissingAttribute    = "MISSING_ATTRIBUTE"
	CodeExclusiveAttributes = "EXCLUSIVE_ATTRIBUTES"
	CodeUnsupportedElement  = "UNSUPPORTED_ELEMENT"
	CodeInvalidIdentifier   = "INVALID_IDENTIFIER"
	CodeUnresolvableRef     = "UNRESOLVABLE_REFERENCE"
	CodeCircularRef         = "CIRCULAR_REFERENCE"
	CodeTypeContract        = "TYPE_CONTRACT_VIOLATION"
	CodeMalformedSpread     = "MALFORMED_SPREAD"
	CodeSyntax              = "SYNTAX_ERROR"
	CodeInternal            = "INTERNAL"
)

// Error is the structured compile error.
type Error struct {
	Code    string
	Message string
	Pos     source.Pos
	Cause   error
}

func (e *Error) Error() string {
	if !e.Pos.IsZero() {
		return fmt.Sprintf("%s: [%s] %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error at pos.
func New(code string, pos source.Pos, message string) *Error {
	return &Error{Code: code, Message: message, Pos: pos}
}

// Newf creates an Error at pos with a formatted message.
func Newf(code string, pos source.Pos, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// WithCause attaches an underlying cause.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

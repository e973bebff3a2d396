package expr

import (
	"errors"
	"fmt"
)

// ErrVariableSyntax marks placeholders that cannot be parsed into a base path
// and filter chain.
var ErrVariableSyntax = errors.New("expr: variable syntax error")

// SyntaxError describes why a placeholder body was rejected.
type SyntaxError struct {
	Raw    string
	Reason string
}

func (e *SyntaxError) Error() string {
	if e.Raw == "" {
		return fmt.Sprintf("expr: %s", e.Reason)
	}
	return fmt.Sprintf("expr: could not parse variable %q: %s", e.Raw, e.Reason)
}

// Unwrap lets errors.Is match ErrVariableSyntax.
func (e *SyntaxError) Unwrap() error {
	return ErrVariableSyntax
}

func syntaxError(raw, format string, args ...any) error {
	return &SyntaxError{Raw: raw, Reason: fmt.Sprintf(format, args...)}
}

package sqltmpl

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNullInput is returned by FromNullable when the template is absent.
	ErrNullInput = errors.New("input template cannot be null")

	// ErrUnexpectedBinding means values were bound for a template that has no
	// placeholders.
	ErrUnexpectedBinding = errors.New("template has no named arguments, but bind was called")

	// ErrMissingBindings means the template has placeholders but nothing was bound.
	ErrMissingBindings = errors.New("named arguments are not bound")

	// ErrBindingMismatch means the bound names do not match the template's
	// placeholder names.
	ErrBindingMismatch = errors.New("some named arguments are not bound")
)

// BindingError is returned when bindings do not satisfy the template. Names
// lists the placeholder names left without a value (for ErrMissingBindings,
// every expected name). Unknown lists bound names the template does not use.
type BindingError struct {
	Err     error
	Input   string
	Names   []string
	Unknown []string
}

func (e *BindingError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Err.Error())
	if len(e.Names) > 0 {
		fmt.Fprintf(&sb, ": %v", e.Names)
	}
	if len(e.Unknown) > 0 {
		fmt.Fprintf(&sb, ", unknown: %v", e.Unknown)
	}
	fmt.Fprintf(&sb, ", input: `%s`", e.Input)
	return sb.String()
}

func (e *BindingError) Unwrap() error {
	return e.Err
}

func bindingError(err error, input string, names, unknown []string) error {
	return errors.WithStack(&BindingError{Err: err, Input: input, Names: names, Unknown: unknown})
}

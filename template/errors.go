package template

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNestedPlaceholder is matched by a SyntaxError raised when a placeholder
	// opens while another one is still open, e.g. `${table ?{id}}`.
	ErrNestedPlaceholder = errors.New("nested placeholder")

	// ErrEmptyName is matched by a SyntaxError raised for `${}`, `?{}` or a
	// format placeholder whose name is empty after the modifier, e.g. `${%d }`.
	ErrEmptyName = errors.New("placeholder has empty name")

	// ErrUnterminatedPlaceholder is matched by a SyntaxError raised when the
	// input ends while a placeholder is open.
	ErrUnterminatedPlaceholder = errors.New("placeholder is not closed")
)

// SyntaxErrorKind classifies a SyntaxError.
type SyntaxErrorKind int

const (
	NestedPlaceholder SyntaxErrorKind = iota + 1
	EmptyName
	UnterminatedPlaceholder
)

func (k SyntaxErrorKind) String() string {
	switch k {
	case NestedPlaceholder:
		return "NestedPlaceholder"
	case EmptyName:
		return "EmptyName"
	case UnterminatedPlaceholder:
		return "UnterminatedPlaceholder"
	}
	return fmt.Sprintf("SyntaxErrorKind(%d)", int(k))
}

func (k SyntaxErrorKind) sentinel() error {
	switch k {
	case NestedPlaceholder:
		return ErrNestedPlaceholder
	case EmptyName:
		return ErrEmptyName
	case UnterminatedPlaceholder:
		return ErrUnterminatedPlaceholder
	}
	return nil
}

// SyntaxError reports a malformed template. Offset is the byte offset of the
// trigger character (`$` or `?`) of the offending placeholder.
type SyntaxError struct {
	Kind   SyntaxErrorKind
	Offset int
	Input  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at index %d, input: `%s`", e.Kind.sentinel(), e.Offset, e.Input)
}

func (e *SyntaxError) Unwrap() error {
	return e.Kind.sentinel()
}

func newSyntaxError(kind SyntaxErrorKind, input string, offset int) error {
	return errors.WithStack(&SyntaxError{Kind: kind, Offset: offset, Input: input})
}

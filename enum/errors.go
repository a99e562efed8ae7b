package enum

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of an enum error
type ErrorKind string

const (
	KindNotMember   ErrorKind = "not_member"
	KindCast        ErrorKind = "cast"
	KindNotDeclared ErrorKind = "not_declared"
	KindBadTag      ErrorKind = "bad_tag"
	KindTarget      ErrorKind = "invalid_target"
	KindConflict    ErrorKind = "name_conflict"
)

// Error is a structured enum error carrying the enumeration name and the raw
// input that caused it.
type Error struct {
	Kind ErrorKind
	Enum string
	Raw  any
	Err  error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("enum: %s: %v", e.message(), e.Err)
	}
	return "enum: " + e.message()
}

func (e *Error) message() string {
	switch {
	case e.Kind == KindNotMember && e.Enum != "":
		return fmt.Sprintf("%v is not a valid %s", e.Raw, e.Enum)
	case e.Kind == KindCast && e.Enum != "":
		return fmt.Sprintf("cannot convert %v (%T) to %s", e.Raw, e.Raw, e.Enum)
	case e.Kind == KindNotDeclared && e.Enum != "":
		return fmt.Sprintf("no enumeration declared for %s", e.Enum)
	case e.Kind == KindBadTag && e.Raw != nil:
		return fmt.Sprintf("invalid fbenum tag %q", e.Raw)
	case e.Kind == KindConflict && e.Enum != "":
		return fmt.Sprintf("unknown name %v is a declared member of %s", e.Raw, e.Enum)
	case e.Kind == KindTarget && e.Raw != nil:
		return fmt.Sprintf("invalid annotation target %T", e.Raw)
	}
	return string(e.Kind)
}

// Unwrap implements errors.Unwrap
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrNotMember     = &Error{Kind: KindNotMember}
	ErrCast          = &Error{Kind: KindCast}
	ErrNotDeclared   = &Error{Kind: KindNotDeclared}
	ErrBadTag        = &Error{Kind: KindBadTag}
	ErrInvalidTarget = &Error{Kind: KindTarget}
	ErrNameConflict  = &Error{Kind: KindConflict}
)

// IsNotMember checks if err reports a value outside a plain enumeration
func IsNotMember(err error) bool {
	return errors.Is(err, ErrNotMember)
}

// IsCastError checks if err reports a raw value of the wrong type
func IsCastError(err error) bool {
	return errors.Is(err, ErrCast)
}

// IsNotDeclared checks if err reports a type without a declared enumeration
func IsNotDeclared(err error) bool {
	return errors.Is(err, ErrNotDeclared)
}

// IsNameConflict checks if err reports an unknown-name that is also the name
// of a declared member
func IsNameConflict(err error) bool {
	return errors.Is(err, ErrNameConflict)
}

// Package fault classifies the failures the site handles locally.
package fault

import (
	"errors"
	"fmt"
)

// Kind identifies a class of failure.
type Kind string

const (
	// MissingElement means a referenced header, content block or asset entry is absent.
	MissingElement Kind = "missing_element"
	// AssetUnavailable means a download target could not be reached.
	AssetUnavailable Kind = "asset_unavailable"
	// InvalidParameter means a caller supplied a value outside the accepted set.
	InvalidParameter Kind = "invalid_parameter"
)

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match an *Error against a bare Kind.
func (e *Error) Is(target error) bool {
	var k kindError
	if errors.As(target, &k) {
		return e.Kind == Kind(k)
	}
	return false
}

type kindError Kind

func (k kindError) Error() string { return string(k) }

// Sentinels usable with errors.Is.
var (
	ErrMissingElement   error = kindError(MissingElement)
	ErrAssetUnavailable error = kindError(AssetUnavailable)
	ErrInvalidParameter error = kindError(InvalidParameter)
)

// New returns a classified error.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

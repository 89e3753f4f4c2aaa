// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

import "fmt"

// Kind tags an Error with the taxonomy a caller can switch on instead of
// matching error strings.
type Kind uint8

// Error kinds. The Database layer is the only layer allowed to report
// Corrupt; every other layer passes errors through unchanged.
const (
	// NotFound means a resolver returned no path, or a type/member lookup
	// found nothing.
	NotFound Kind = iota
	// Corrupt means a format violation in the metadata stream: a bad
	// header, an out-of-range index, an impossible row count, or a heap
	// index beyond the heap size.
	Corrupt
	// Unsupported means the input is valid but the case isn't covered:
	// ExportedType resolution, nested-type cross-assembly lookup, a
	// custom-attribute type that isn't MethodDef/MemberRef.
	Unsupported
	// InvalidArgument means a null handle, a cross-kind row reference, or
	// an unparsable AssemblyName string.
	InvalidArgument
	// Io means a file open/read failure surfaced from the file layer.
	Io
)

// String names the kind.
func (k Kind) String() string {
	switch k {
	case NotFound:
		return "NotFound"
	case Corrupt:
		return "Corrupt"
	case Unsupported:
		return "Unsupported"
	case InvalidArgument:
		return "InvalidArgument"
	case Io:
		return "Io"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type the core returns. It always carries a
// Kind plus a human-readable message naming the offending name, index or
// path, per spec.md's "every failure yields a deterministic, described
// error" requirement.
type Error struct {
	Kind    Kind
	Message string
	// Wrapped, if set, is the underlying cause (e.g. an io.Reader error).
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("clrmeta: %s: %s: %v", e.Kind, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("clrmeta: %s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Wrapped }

// Is reports whether err is a *Error of the given kind, letting callers
// switch on taxonomy (spec.md §7) instead of matching error strings.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}

// errf builds an *Error of the given kind with a formatted message.
func errf(kind Kind, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

// wrapf builds an *Error of the given kind, wrapping cause.
func wrapf(kind Kind, cause error, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...), Wrapped: cause}
}

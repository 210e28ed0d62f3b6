// Package xvfserr defines the error kinds shared across the XDVDFS reader,
// the filesystem-operations adapter, and the mount glue, per the error
// table in the specification this module implements.
package xvfserr

import "errors"

// Kind classifies a failure so callers at each layer boundary can decide
// how to surface it (fatal setup error, per-callback status, CLI exit).
type Kind int

const (
	// KindFileOpen means the backing image file could not be opened.
	KindFileOpen Kind = iota
	// KindFormat means the volume descriptor or an entry failed to parse
	// or validate, on both the normal and the shifted game-partition offset.
	KindFormat
	// KindIO means a pread against the backing stream failed mid-operation.
	KindIO
	// KindNotFound means a path lookup produced no entry.
	KindNotFound
	// KindAccessDenied means a write was attempted against the read-only volume.
	KindAccessDenied
	// KindUnsupported means a create/truncate disposition is not implemented.
	KindUnsupported
	// KindBridge means the host FS bridge reported a startup failure.
	KindBridge
)

func (k Kind) String() string {
	switch k {
	case KindFileOpen:
		return "file-open-error"
	case KindFormat:
		return "format-error"
	case KindIO:
		return "io-error"
	case KindNotFound:
		return "not-found"
	case KindAccessDenied:
		return "access-denied"
	case KindUnsupported:
		return "unsupported"
	case KindBridge:
		return "bridge-error"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a Kind so it can be matched with
// errors.As without string comparisons.
type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// New wraps cause with kind. cause may be nil.
func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

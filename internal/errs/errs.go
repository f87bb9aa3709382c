// Package errs defines the terminal failure kinds surfaced to callers of the
// manifest store, template cache and merge engine.
package errs

import (
	"errors"
	"strings"
)

// Kind classifies a terminal failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindCatalogUnavailable means no manifest, fresh or stale, could be obtained.
	KindCatalogUnavailable
	// KindTemplateUnavailable means a template body could not be obtained by any means.
	KindTemplateUnavailable
	// KindMergeCancelled means the user declined the merge.
	KindMergeCancelled
	// KindEmptyTemplateSet means there was nothing to generate.
	KindEmptyTemplateSet
)

func (k Kind) String() string {
	switch k {
	case KindCatalogUnavailable:
		return "catalog unavailable"
	case KindTemplateUnavailable:
		return "template unavailable"
	case KindMergeCancelled:
		return "merge cancelled"
	case KindEmptyTemplateSet:
		return "empty template set"
	default:
		return "unknown failure"
	}
}

// Retryable reports whether re-running the tool may succeed.
func (k Kind) Retryable() bool {
	return k == KindCatalogUnavailable || k == KindTemplateUnavailable
}

// Error carries the failing operation, the catalog path when one applies and
// the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

var (
	ErrCatalogUnavailable  = &Error{Kind: KindCatalogUnavailable}
	ErrTemplateUnavailable = &Error{Kind: KindTemplateUnavailable}
	ErrMergeCancelled      = &Error{Kind: KindMergeCancelled}
	ErrEmptyTemplateSet    = &Error{Kind: KindEmptyTemplateSet}
)

// CatalogUnavailable builds a manifest failure.
func CatalogUnavailable(cause error) *Error {
	return &Error{Kind: KindCatalogUnavailable, Op: "manifest", Err: cause}
}

// TemplateUnavailable builds a template body failure for path.
func TemplateUnavailable(path string, cause error) *Error {
	return &Error{Kind: KindTemplateUnavailable, Op: "template", Path: path, Err: cause}
}

// MergeCancelled builds a merge failure for a declined merge.
func MergeCancelled() *Error {
	return &Error{Kind: KindMergeCancelled, Op: "merge"}
}

// EmptyTemplateSet builds a merge failure for an empty selection.
func EmptyTemplateSet() *Error {
	return &Error{Kind: KindEmptyTemplateSet, Op: "merge"}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		if e.Path != "" {
			b.WriteString(" ")
			b.WriteString(e.Path)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Kind.Retryable() {
		b.WriteString(" (re-running may help)")
	} else if e.Kind != KindUnknown {
		b.WriteString(" (re-running will not help)")
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind. A target with a path only
// matches errors for that path.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Path == "" || t.Path == e.Path
}

// Retryable reports whether err, or an *Error it wraps, is worth retrying.
func Retryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind.Retryable()
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Package apperr defines the failure kinds surfaced by the generator core.
// It has no internal dependencies so every layer can import it.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindValidation
	KindTransaction
	KindRender
	KindCatalog
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation_failure"
	case KindTransaction:
		return "transaction_failure"
	case KindRender:
		return "render_failure"
	case KindCatalog:
		return "catalog_error"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks. Any *Error of the same kind matches.
var (
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrConflict    = &Error{Kind: KindConflict}
	ErrValidation  = &Error{Kind: KindValidation}
	ErrTransaction = &Error{Kind: KindTransaction}
	ErrRender      = &Error{Kind: KindRender}
	ErrCatalog     = &Error{Kind: KindCatalog}
)

// Error is a typed failure with an operation name and optional cause.
type Error struct {
	Kind Kind
	Op   string // e.g. "import", "sync"
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	var prefix string
	if e.Op != "" {
		prefix = e.Op + ": "
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s%s: %v", prefix, e.Msg, e.Err)
	case e.Msg != "":
		return prefix + e.Msg
	case e.Err != nil:
		return prefix + e.Err.Error()
	default:
		return prefix + e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// NotFound builds a KindNotFound error.
func NotFound(op, format string, args ...any) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Conflict builds a KindConflict error.
func Conflict(op, format string, args ...any) error {
	return &Error{Kind: KindConflict, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Validation builds a KindValidation error.
func Validation(op, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Transaction wraps a write failure. Kinds already set on err are preserved.
func Transaction(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindUnknown {
		return err
	}
	return &Error{Kind: KindTransaction, Op: op, Msg: "transaction rolled back", Err: err}
}

// Render wraps a template failure.
func Render(op, templateID string, err error) error {
	return &Error{Kind: KindRender, Op: op, Msg: fmt.Sprintf("failed to render %s", templateID), Err: err}
}

// Catalog wraps a schema introspection failure. Kinds already set on err are preserved.
func Catalog(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindUnknown {
		return err
	}
	return &Error{Kind: KindCatalog, Op: op, Msg: "catalog query failed", Err: err}
}

// Package apperr defines the domain errors returned by services. Handlers map
// them to HTTP statuses with errors.As.
package apperr

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-printshop/validation"
)

// Kind classifies a domain error.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInsufficientStock Kind = "insufficient_stock"
	KindConflict          Kind = "conflict"
	KindValidation        Kind = "validation_failed"
)

// Error is the single domain error type. Only the fields relevant to Kind are set.
type Error struct {
	Kind   Kind
	Entity string // "client", "product", "material", "order", "user"
	ID     any
	Name   string

	Requested int
	Available int

	References int64
	Violations validation.Violations

	Msg string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		if e.Name != "" {
			return fmt.Sprintf("%s %q not found", e.Entity, e.Name)
		}
		return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
	case KindInsufficientStock:
		return fmt.Sprintf("insufficient stock for %s %q: requested %d, available %d",
			e.Entity, e.Name, e.Requested, e.Available)
	case KindConflict:
		if e.Msg != "" {
			return e.Msg
		}
		return fmt.Sprintf("%s %v is referenced by %d record(s)", e.Entity, e.ID, e.References)
	case KindValidation:
		if e.Msg != "" {
			return "validation failed: " + e.Msg
		}
		return fmt.Sprintf("validation failed: %d field(s)", len(e.Violations))
	}
	return string(e.Kind)
}

// NotFound reports a missing entity looked up by id.
func NotFound(entity string, id any) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id}
}

// NotFoundByName reports a missing entity looked up by name.
func NotFoundByName(entity, name string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, Name: name}
}

// InsufficientStock reports a decrement that would take stock below zero.
func InsufficientStock(entity string, id uint, name string, requested, available int) *Error {
	return &Error{Kind: KindInsufficientStock, Entity: entity, ID: id, Name: name,
		Requested: requested, Available: available}
}

// Conflict reports a delete blocked by live references.
func Conflict(entity string, id any, references int64) *Error {
	return &Error{Kind: KindConflict, Entity: entity, ID: id, References: references}
}

// Conflictf reports any other state conflict, such as a duplicate unique key.
func Conflictf(entity, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Entity: entity, Msg: fmt.Sprintf(format, args...)}
}

// Invalid wraps field violations.
func Invalid(v validation.Violations) *Error {
	return &Error{Kind: KindValidation, Violations: v}
}

// Invalidf reports a single field violation.
func Invalidf(field, code string) *Error {
	return &Error{Kind: KindValidation, Violations: validation.Violations{field: code}, Msg: field + " " + code}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err carries a domain error of the given kind.
func Is(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}

package shared

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies ledger failures so transports can map them without
// inspecting messages.
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindConflict   ErrorKind = "CONFLICT"
	KindState      ErrorKind = "STATE"
)

// Sentinels for errors.Is matching on kind only.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrState      = &Error{Kind: KindState}
)

// Error is the structured error returned by every ledger operation.
type Error struct {
	Kind        ErrorKind
	Message     string
	Identifiers map[string]string
	Err         error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(string(e.Kind)))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Identifiers) > 0 {
		keys := make([]string, 0, len(e.Identifiers))
		for k := range e.Identifiers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+e.Identifiers[k])
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements the errors.Is interface. A target without a message matches
// any error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// With returns a copy carrying an extra identifier.
func (e *Error) With(key string, value any) *Error {
	ids := make(map[string]string, len(e.Identifiers)+1)
	for k, v := range e.Identifiers {
		ids[k] = v
	}
	ids[key] = fmt.Sprint(value)
	cp := *e
	cp.Identifiers = ids
	return &cp
}

func newError(kind ErrorKind, msg string, kv []any) *Error {
	e := &Error{Kind: kind, Message: msg}
	for i := 0; i+1 < len(kv); i += 2 {
		if e.Identifiers == nil {
			e.Identifiers = make(map[string]string, len(kv)/2)
		}
		e.Identifiers[fmt.Sprint(kv[i])] = fmt.Sprint(kv[i+1])
	}
	return e
}

// NewValidationError builds a VALIDATION error; kv are identifier key/value pairs.
func NewValidationError(msg string, kv ...any) *Error {
	return newError(KindValidation, msg, kv)
}

// NewNotFoundError builds a NOT_FOUND error for the named resource.
func NewNotFoundError(resource string, id any) *Error {
	return newError(KindNotFound, resource+" not found", []any{resource, id})
}

// NewConflictError builds a CONFLICT error.
func NewConflictError(msg string, kv ...any) *Error {
	return newError(KindConflict, msg, kv)
}

// NewStateError builds a STATE error.
func NewStateError(msg string, kv ...any) *Error {
	return newError(KindState, msg, kv)
}

// KindOf reports the kind of a ledger error, or "" for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

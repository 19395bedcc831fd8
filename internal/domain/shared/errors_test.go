package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	err := NewStateError("period already closed", "period_id", "p-1")
	wrapped := fmt.Errorf("close period: %w", err)

	assert.True(t, errors.Is(wrapped, ErrState))
	assert.False(t, errors.Is(wrapped, ErrValidation))
	assert.True(t, errors.Is(wrapped, &Error{Kind: KindState, Message: "period already closed"}))
	assert.False(t, errors.Is(wrapped, &Error{Kind: KindState, Message: "other"}))
	assert.Equal(t, KindState, KindOf(wrapped))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("boom")))
}

func TestError_Error(t *testing.T) {
	err := NewValidationError("entry is not balanced", "reference", "JE-1", "debit", "10")
	assert.Equal(t, "validation: entry is not balanced (debit=10, reference=JE-1)", err.Error())

	withCause := &Error{Kind: KindNotFound, Message: "debt not found", Err: errors.New("no documents")}
	assert.Equal(t, "not_found: debt not found: no documents", withCause.Error())
}

func TestError_With(t *testing.T) {
	base := NewConflictError("duplicate reference")
	e := base.With("reference", "SO-1")
	assert.Empty(t, base.Identifiers)
	assert.Equal(t, "SO-1", e.Identifiers["reference"])
}

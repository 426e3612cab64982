package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastUserMessage(t *testing.T) {
	c := NewConversation("s1")
	assert.Empty(t, c.LastUserMessage())

	c.Append(RoleUser, "first")
	c.Append(RoleAssistant, "reply")
	c.Append(RoleUser, "second")
	c.Append(RoleAssistant, "another reply")

	assert.Equal(t, "second", c.LastUserMessage())
}

func TestStatusOf(t *testing.T) {
	c := NewConversation("s1")
	assert.Equal(t, StatusContinuing, StatusOf(c))

	c.AwaitingConfirmation = true
	assert.Equal(t, StatusAwaitingConfirmation, StatusOf(c))

	c.Done = true
	assert.Equal(t, StatusDone, StatusOf(c), "done wins over awaiting confirmation")
}

func TestFieldOrder(t *testing.T) {
	assert.Equal(t, []Field{FieldName, FieldAge, FieldOccupation, FieldIncome, FieldProductName, FieldMemo}, FieldOrder)
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("boom")

	for _, err := range []error{
		&GenerationError{Err: cause},
		&LoggingError{Err: cause},
		&SessionStoreError{Err: cause},
	} {
		assert.ErrorIs(t, err, cause)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Field: FieldAge, Value: "abc", Reason: "age must be a whole number"}
	require.Contains(t, err.Error(), "age")
	require.Contains(t, err.Error(), "abc")
}

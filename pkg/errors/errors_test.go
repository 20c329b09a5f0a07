package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_CollectsEveryField(t *testing.T) {
	verr := &ValidationError{}
	assert.NoError(t, verr.OrNil())

	verr.Add("amount", FieldCodeOutOfRange, "must be greater than 0")
	verr.Add("currency", FieldCodeInvalidLength, "must be exactly 3 characters")

	err := verr.OrNil()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, verr.Has("amount"))
	assert.True(t, verr.Has("currency"))
	assert.False(t, verr.Has("term_months"))
	assert.Contains(t, err.Error(), "amount must be greater than 0")
	assert.Contains(t, err.Error(), "currency must be exactly 3 characters")
	assert.Equal(t, FieldCodeOutOfRange, verr.Fields[0].Code)
	assert.Equal(t, FieldCodeInvalidLength, verr.Fields[1].Code)
}

func TestWrapDatabaseError(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapDatabaseError(cause)

	assert.True(t, errors.Is(err, ErrStorage))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, ErrCodeDatabaseError, CodeOf(err))
}

func TestWrapLoanNotFound(t *testing.T) {
	err := WrapLoanNotFound("abc")

	assert.True(t, errors.Is(err, ErrLoanNotFound))
	assert.Equal(t, "Loan with ID abc not found", err.Message)
	assert.Equal(t, ErrCodeLoanNotFound, CodeOf(fmt.Errorf("lookup: %w", err)))
}

func TestWrapMalformedRequest(t *testing.T) {
	assert.True(t, errors.Is(WrapMalformedRequest("bad", nil), ErrMalformedRequest))

	err := WrapInvalidIdentifier("not-a-uuid")
	assert.True(t, errors.Is(err, ErrMalformedRequest))
	assert.True(t, errors.Is(err, ErrInvalidIdentifier))
	assert.Equal(t, ErrCodeMalformedRequest, err.Code)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeValidationFailed, CodeOf(&ValidationError{}))
	assert.Equal(t, ErrCodeInternalError, CodeOf(errors.New("boom")))
	assert.Equal(t, ErrCodeCacheError, CodeOf(WrapCacheError(errors.New("down"))))
}

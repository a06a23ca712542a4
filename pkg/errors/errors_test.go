package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBusinessErrorUnwraps(t *testing.T) {
	err := WrapAlreadyFloored("unit-1")

	assert.True(t, errors.Is(err, ErrAlreadyFloored))

	var berr *BusinessError
	assert.ErrorAs(t, fmt.Errorf("flooring: %w", err), &berr)
	assert.Equal(t, ErrCodeAlreadyFloored, berr.Code)
}

func TestInsufficientCreditDetails(t *testing.T) {
	err := WrapInsufficientCredit(decimal.NewFromInt(80000), decimal.NewFromInt(70000))

	assert.Equal(t, ErrCodeInsufficientCredit, err.Code)
	assert.Equal(t, "70000.00", err.Details["available"])
	assert.Contains(t, err.Message, "80000.00")
}

func TestErrorStringIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapDatabaseError(cause)

	assert.Contains(t, err.Error(), ErrCodeDatabaseError)
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, errors.Is(err, cause))

	// Validation errors carry no cause.
	verr := WrapValidationError("amount must be positive")
	assert.Equal(t, "VALIDATION_ERROR: amount must be positive", verr.Error())
}

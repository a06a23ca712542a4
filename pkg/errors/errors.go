package errors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrUnitLoanNotFound   = errors.New("unit loan not found")
	ErrAccountNotActive   = errors.New("account is not active")
	ErrAlreadyFloored     = errors.New("unit already has an active floor plan")
	ErrInsufficientCredit = errors.New("insufficient available credit")
	ErrCreditConflict     = errors.New("credit limit below drawn balance")
	ErrActiveLoansExist   = errors.New("account has active unit loans")
	ErrLoanNotActive      = errors.New("unit loan is not active")
	ErrRateLimited        = errors.New("rate limit exceeded")
)

// Error codes
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeAccountNotActive   = "ACCOUNT_NOT_ACTIVE"
	ErrCodeAlreadyFloored     = "ALREADY_FLOORED"
	ErrCodeInsufficientCredit = "INSUFFICIENT_CREDIT"
	ErrCodeCreditConflict     = "CREDIT_CONFLICT"
	ErrCodeActiveLoansExist   = "ACTIVE_LOANS_EXIST"
	ErrCodeLoanNotActive      = "LOAN_NOT_ACTIVE"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
	ErrCodeCacheError         = "CACHE_ERROR"
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap common errors with business context

func WrapAccountNotFound(accountID string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("Floor plan account %s not found", accountID),
		ErrAccountNotFound,
	)
}

func WrapUnitLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("Unit loan %s not found", loanID),
		ErrUnitLoanNotFound,
	)
}

func WrapAccountNotActive(accountID, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeAccountNotActive,
		fmt.Sprintf("Account %s is %s, not active", accountID, status),
		ErrAccountNotActive,
	)
}

func WrapAlreadyFloored(unitID string) *BusinessError {
	return NewBusinessError(
		ErrCodeAlreadyFloored,
		fmt.Sprintf("Inventory unit %s already has an active floor plan", unitID),
		ErrAlreadyFloored,
	)
}

// WrapInsufficientCredit carries the account's current available credit so the
// caller can size a retry without another round trip.
func WrapInsufficientCredit(requested, available decimal.Decimal) *BusinessError {
	e := NewBusinessError(
		ErrCodeInsufficientCredit,
		fmt.Sprintf("Requested %s exceeds available credit %s", requested.StringFixed(2), available.StringFixed(2)),
		ErrInsufficientCredit,
	)
	e.Details = map[string]interface{}{"available": available.StringFixed(2)}
	return e
}

func WrapCreditConflict(limit, drawn decimal.Decimal) *BusinessError {
	e := NewBusinessError(
		ErrCodeCreditConflict,
		fmt.Sprintf("Credit limit %s cannot be set below drawn balance %s", limit.StringFixed(2), drawn.StringFixed(2)),
		ErrCreditConflict,
	)
	e.Details = map[string]interface{}{"drawn": drawn.StringFixed(2)}
	return e
}

func WrapActiveLoansExist(accountID string, count int) *BusinessError {
	e := NewBusinessError(
		ErrCodeActiveLoansExist,
		fmt.Sprintf("Account %s still has %d active unit loans", accountID, count),
		ErrActiveLoansExist,
	)
	e.Details = map[string]interface{}{"active_loans": count}
	return e
}

func WrapLoanNotActive(loanID, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotActive,
		fmt.Sprintf("Unit loan %s is %s, not active", loanID, status),
		ErrLoanNotActive,
	)
}

func WrapRateLimited() *BusinessError {
	return NewBusinessError(
		ErrCodeRateLimited,
		"Too many requests, slow down",
		ErrRateLimited,
	)
}

func WrapValidationError(message string) *BusinessError {
	return NewBusinessError(ErrCodeValidation, message, nil)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}

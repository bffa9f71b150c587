package commerce

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies storefront failures. Transport maps codes to status codes.
type ErrorCode string

const (
	CodeValidation             ErrorCode = "validation"
	CodeEmptyCart              ErrorCode = "empty_cart"
	CodeProductUnavailable     ErrorCode = "product_unavailable"
	CodeInsufficientStock      ErrorCode = "insufficient_stock"
	CodeOrderCreation          ErrorCode = "order_creation"
	CodeNotFound               ErrorCode = "not_found"
	CodeAuthenticationRequired ErrorCode = "authentication_required"
	CodeForbidden              ErrorCode = "forbidden"
	CodeDuplicateOrderNumber   ErrorCode = "duplicate_order_number"
	CodeConflict               ErrorCode = "conflict"
	CodeInvariantViolation     ErrorCode = "invariant_violation"
	CodeRetryable              ErrorCode = "retryable"
	CodeInternal               ErrorCode = "internal"
)

// Error is the canonical storefront error wrapper.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an error with explicit code + operation.
func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates an existing error with a code.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

// IsCode checks whether err (or a wrapped err) carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// CodeOf extracts the outermost code when available.
func CodeOf(err error) ErrorCode {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Code
}

// MessageOf returns the human readable message of the outermost Error, or err.Error().
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return err.Error()
}

func ValidationError(op, message string) error {
	return NewError(CodeValidation, op, message, nil)
}

func NotFoundError(op, what string) error {
	return NewError(CodeNotFound, op, what+" not found", nil)
}

func AuthenticationRequiredError(op string) error {
	return NewError(CodeAuthenticationRequired, op, "authentication required", nil)
}

func EmptyCartError(op string) error {
	return NewError(CodeEmptyCart, op, "cart is empty", nil)
}

func ProductUnavailableError(op, productName string) error {
	if strings.TrimSpace(productName) == "" {
		productName = "product"
	}
	return NewError(CodeProductUnavailable, op, productName+" is no longer available", nil)
}

func InsufficientStockError(op, productName string, requested, available int) error {
	return NewError(CodeInsufficientStock, op,
		fmt.Sprintf("insufficient stock for %s: requested %d, available %d", productName, requested, available), nil)
}

func OrderCreationError(op string, cause error) error {
	return NewError(CodeOrderCreation, op, "failed to create order", cause)
}

func DuplicateOrderNumberError(op, orderNumber string, cause error) error {
	return NewError(CodeDuplicateOrderNumber, op, "order number already used: "+orderNumber, cause)
}

// IsPrecondition reports checkout failures that leave no trace and are returned as-is.
func IsPrecondition(err error) bool {
	switch CodeOf(err) {
	case CodeValidation, CodeEmptyCart, CodeProductUnavailable, CodeInsufficientStock,
		CodeAuthenticationRequired, CodeNotFound:
		return true
	default:
		return false
	}
}

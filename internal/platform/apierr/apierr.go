// Package apierr translates storefront error codes into HTTP responses.
package apierr

import (
	"fmt"
	"net/http"

	"github.com/yungbote/storefront-backend/internal/domain/commerce"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

var statusByCode = map[commerce.ErrorCode]int{
	commerce.CodeValidation:             http.StatusBadRequest,
	commerce.CodeEmptyCart:              http.StatusBadRequest,
	commerce.CodeProductUnavailable:     http.StatusConflict,
	commerce.CodeInsufficientStock:      http.StatusConflict,
	commerce.CodeConflict:               http.StatusConflict,
	commerce.CodeDuplicateOrderNumber:   http.StatusConflict,
	commerce.CodeNotFound:               http.StatusNotFound,
	commerce.CodeAuthenticationRequired: http.StatusUnauthorized,
	commerce.CodeForbidden:              http.StatusForbidden,
	commerce.CodeRetryable:              http.StatusServiceUnavailable,
	commerce.CodeInvariantViolation:     http.StatusInternalServerError,
	commerce.CodeOrderCreation:          http.StatusInternalServerError,
	commerce.CodeInternal:               http.StatusInternalServerError,
}

// StatusFor returns the HTTP status for a code; unknown codes are 500.
func StatusFor(code commerce.ErrorCode) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// FromError classifies any service error. Already classified errors pass through.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*Error); ok {
		return ae
	}
	code := commerce.CodeOf(err)
	if code == "" {
		code = commerce.CodeInternal
	}
	return New(StatusFor(code), string(code), err)
}

// PublicMessage hides store and driver detail behind 5xx responses.
func (e *Error) PublicMessage() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Status >= 500 && e.Code == string(commerce.CodeOrderCreation):
		return "failed to create order, please try again"
	case e.Status >= 500:
		return "internal server error"
	default:
		return commerce.MessageOf(e.Err)
	}
}

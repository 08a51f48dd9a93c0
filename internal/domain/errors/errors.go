package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrBackendUnavailable = errors.New("lightning backend unavailable")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInsufficientAmount = errors.New("insufficient token amount")
	ErrAlreadySpent       = errors.New("token already spent")
	ErrAlreadyIssued      = errors.New("quote already issued")
	ErrQuoteExpired       = errors.New("quote expired")
	ErrQuoteNotPaid       = errors.New("quote not paid")
	ErrQuotePending       = errors.New("quote payment pending")
	ErrStateConflict      = errors.New("quote state conflict")
	ErrUpstream           = errors.New("upstream provider failed")
)

// AppError represents application error with HTTP status
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrInvalidInput)
}

func PaymentRequired(message string, err error) *AppError {
	return NewAppError(http.StatusPaymentRequired, message, err)
}

func Conflict(message string, err error) *AppError {
	return NewAppError(http.StatusConflict, message, err)
}

func ServiceUnavailable(message string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, message, ErrBackendUnavailable)
}

func BadGateway(message string) *AppError {
	return NewAppError(http.StatusBadGateway, message, ErrUpstream)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "internal server error", err)
}

package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrUnsupportedChain   = errors.New("unsupported chain")

	// Wallet authentication
	ErrMalformedChallenge   = errors.New("malformed challenge")
	ErrSignatureInvalid     = errors.New("signature invalid")
	ErrAddressAlreadyLinked = errors.New("address already linked to another user")

	// Payment verification: retryable conditions
	ErrRpcUnavailable     = errors.New("rpc unavailable")
	ErrTransactionPending = errors.New("transaction not yet finalized")

	// Payment verification: terminal failures
	ErrTransactionReverted = errors.New("transaction reverted")
	ErrRecipientMismatch   = errors.New("recipient mismatch")
	ErrAmountMismatch      = errors.New("amount below tolerance")
	ErrOrderExpired        = errors.New("order expired")
	ErrOrderAlreadySettled = errors.New("order already settled")
)

// Error codes surfaced in HTTP responses
const (
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeBadRequest    = "BAD_REQUEST"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeInternalError = "INTERNAL_ERROR"

	CodeMalformedChallenge   = "MALFORMED_CHALLENGE"
	CodeSignatureInvalid     = "SIGNATURE_INVALID"
	CodeAddressAlreadyLinked = "ADDRESS_ALREADY_LINKED"
	CodeRpcUnavailable       = "RPC_UNAVAILABLE"
	CodeTransactionPending   = "TRANSACTION_PENDING"
	CodeTransactionReverted  = "TRANSACTION_REVERTED"
	CodeRecipientMismatch    = "RECIPIENT_MISMATCH"
	CodeAmountMismatch       = "AMOUNT_MISMATCH"
	CodeOrderExpired         = "ORDER_EXPIRED"
	CodeOrderAlreadySettled  = "ORDER_ALREADY_SETTLED"
)

// IsRetryable reports whether the verification error is transient: the caller
// may retry after the transaction finalizes and no order state changes.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRpcUnavailable) || errors.Is(err, ErrTransactionPending)
}

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
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
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

func InternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, nil)
}

// Wallet authentication and payment verification constructors

func MalformedChallenge(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeMalformedChallenge, message, ErrMalformedChallenge)
}

func SignatureInvalid() *AppError {
	return NewAppError(http.StatusBadRequest, CodeSignatureInvalid, "signature verification failed", ErrSignatureInvalid)
}

func AddressAlreadyLinked() *AppError {
	return NewAppError(http.StatusConflict, CodeAddressAlreadyLinked, "address already linked to another user", ErrAddressAlreadyLinked)
}

func OrderExpired() *AppError {
	return NewAppError(http.StatusGone, CodeOrderExpired, "order expired before payment", ErrOrderExpired)
}

func OrderAlreadySettled() *AppError {
	return NewAppError(http.StatusConflict, CodeOrderAlreadySettled, "order already settled with a different transaction", ErrOrderAlreadySettled)
}

// NewError creates a new error with a custom message wrapping an existing error
func NewError(message string, err error) error {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
		Err:     err,
	}
}

package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Code classifies relay client failures the way relayer services report them.
type Code string

const (
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeUnsupportedToken    Code = "UNSUPPORTED_TOKEN"
	CodeUnsupportedChain    Code = "UNSUPPORTED_CHAIN"
	CodeInvalidAddress      Code = "INVALID_ADDRESS"
	CodeInvalidAmount       Code = "INVALID_AMOUNT"
	CodeNetworkError        Code = "NETWORK_ERROR"
	CodeRelayerError        Code = "RELAYER_ERROR"
	CodeSignatureRejected   Code = "SIGNATURE_REJECTED"
	CodeQuoteExpired        Code = "QUOTE_EXPIRED"
	CodeNotImplemented      Code = "NOT_IMPLEMENTED"
)

var (
	ErrChainNotFound      = errors.New("chain not found")
	ErrInvalidChainID     = errors.New("invalid chain id")
	ErrInvalidConfig      = errors.New("invalid chain configuration")
	ErrChainExists        = errors.New("chain already exists in registry")
	ErrFactoryNotProvided = errors.New("chain factory not provided")
	ErrInvalidChainType   = errors.New("invalid chain type")
	ErrNotImplemented     = errors.New("functionality not implemented")
)

// RelayError is the error shape surfaced to library consumers: a stable
// code, a human-readable message and optional details passed through from
// the relayer response.
type RelayError struct {
	Code    Code
	Message string
	Details map[string]interface{}
	cause   error
}

// New creates a RelayError with the given code and message.
func New(code Code, message string) *RelayError {
	return &RelayError{Code: code, Message: message}
}

// Newf creates a RelayError with a formatted message.
func Newf(code Code, format string, args ...interface{}) *RelayError {
	return &RelayError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates an underlying error with a code and message.
// A nil err returns nil.
func Wrap(err error, code Code, message string) *RelayError {
	if err == nil {
		return nil
	}
	return &RelayError{Code: code, Message: message, cause: err}
}

// WithDetails attaches relayer-provided details to the error.
func (e *RelayError) WithDetails(details map[string]interface{}) *RelayError {
	e.Details = details
	return e
}

// Error implements the error interface.
func (e *RelayError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *RelayError) Unwrap() error {
	return e.cause
}

// CodeOf extracts the relay error code from an error chain.
// Errors without a RelayError in their chain map to NETWORK_ERROR
// only if the caller decides so; here they yield an empty code.
func CodeOf(err error) Code {
	var relayErr *RelayError
	if stderrors.As(err, &relayErr) {
		return relayErr.Code
	}
	return ""
}

// HasCode reports whether the error chain carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

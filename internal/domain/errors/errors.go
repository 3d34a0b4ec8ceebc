package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")

	// Configuration errors
	ErrAbiNotFound  = errors.New("abi file not found or unreadable")
	ErrMalformedAbi = errors.New("malformed abi")
	ErrEmptyAddress = errors.New("empty contract address")

	// Argument errors
	ErrMissingConstructorArguments    = errors.New("missing constructor arguments")
	ErrUnexpectedConstructorArguments = errors.New("unexpected constructor arguments")
	ErrArgumentShape                  = errors.New("argument shape mismatch")
	ErrPositionalArguments            = errors.New("arguments must be passed as named fields, not positionally")
	ErrContractNotDeployed            = errors.New("contract is not deployed")
	ErrUnknownFunction                = errors.New("function not found in abi")

	// Submission errors
	ErrDeploymentRejected = errors.New("deployment rejected")
	ErrInvocationFailed   = errors.New("invocation failed")

	// Parse errors
	ErrUnparsableSubmission = errors.New("unparsable submission result")
	ErrUnparsableStatus     = errors.New("unparsable transaction status")
	ErrTruncatedOutput      = errors.New("truncated output sequence")
	ErrTrailingOutput       = errors.New("trailing values in output sequence")

	// Network-side rejection
	ErrTransactionRejected = errors.New("transaction rejected by the network")
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
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
	return NewAppError(http.StatusNotFound, "NOT_FOUND", message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "BAD_REQUEST", message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", message, ErrUnauthorized)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "INTERNAL", "internal server error", err)
}

// FromDomain maps a domain error to an AppError with the right HTTP status.
// Unknown errors map to 500.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnknownFunction):
		return NewAppError(http.StatusNotFound, "NOT_FOUND", err.Error(), err)
	case errors.Is(err, ErrAlreadyExists):
		return NewAppError(http.StatusConflict, "CONFLICT", err.Error(), err)
	case errors.Is(err, ErrAbiNotFound),
		errors.Is(err, ErrMalformedAbi),
		errors.Is(err, ErrEmptyAddress):
		return NewAppError(http.StatusUnprocessableEntity, "CONFIGURATION_ERROR", err.Error(), err)
	case errors.Is(err, ErrMissingConstructorArguments),
		errors.Is(err, ErrUnexpectedConstructorArguments),
		errors.Is(err, ErrArgumentShape),
		errors.Is(err, ErrPositionalArguments),
		errors.Is(err, ErrContractNotDeployed),
		errors.Is(err, ErrInvalidInput):
		return NewAppError(http.StatusBadRequest, "ARGUMENT_ERROR", err.Error(), err)
	case errors.Is(err, ErrDeploymentRejected),
		errors.Is(err, ErrInvocationFailed),
		errors.Is(err, ErrTransactionRejected):
		return NewAppError(http.StatusBadGateway, "SUBMISSION_ERROR", err.Error(), err)
	case errors.Is(err, ErrUnparsableSubmission),
		errors.Is(err, ErrUnparsableStatus),
		errors.Is(err, ErrTruncatedOutput),
		errors.Is(err, ErrTrailingOutput):
		return NewAppError(http.StatusBadGateway, "PARSE_ERROR", err.Error(), err)
	case errors.Is(err, ErrUnauthorized):
		return Unauthorized(err.Error())
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, "FORBIDDEN", err.Error(), ErrForbidden)
	default:
		return InternalError(err)
	}
}

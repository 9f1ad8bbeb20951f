package apperror

import (
	"errors"
	"fmt"
)

// Kind is the stable, machine-readable identifier of a failure.
type Kind string

const (
	KindMissingCredential   Kind = "missing_token"
	KindMalformedCredential Kind = "invalid_token"
	KindStaleSignature      Kind = "invalid_signature"
	KindEncodingFailure     Kind = "unable_to_json_encode_body"
	KindNonArrayBody        Kind = "request_body_should_be_array"
	KindTransportError      Kind = "transport_error"
	KindNonJSONErrorStatus  Kind = "wcc_server_error"
	KindEmptyErrorResponse  Kind = "wcc_server_empty_response"
	KindServerErrorResponse Kind = "wcc_server_error_response"
	KindMalformedResponse   Kind = "malformed_response"
	KindProviderMissing     Kind = "credential_provider_missing"
	KindInvalidServiceSlug  Kind = "invalid_service_slug"
	KindOptionStore         Kind = "option_store_error"
	KindNothingToShip       Kind = "nothing_to_ship"
	KindMissingWeight       Kind = "product_missing_weight"
)

// AppError is a terminal failure of a single Connect server call.
type AppError struct {
	Kind       Kind   `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`              // HTTP status returned by the server, 0 if none
	Data       any    `json:"data,omitempty"` // Server-supplied structured data
	Err        error  `json:"-"`              // Wrapped internal error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Wrap wraps an internal error with an AppError.
func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of the first AppError in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

const requestPrefix = "Unable to send request to Connect server."

// ---- Credentials & signing ----

func ErrMissingCredential() *AppError {
	return New(KindMissingCredential, requestPrefix+" Access token is missing")
}

func ErrMalformedCredential() *AppError {
	return New(KindMalformedCredential, requestPrefix+" Access token is malformed.")
}

func ErrStaleSignature() *AppError {
	return New(KindStaleSignature, requestPrefix+" The timestamp generated for the signature is too old.")
}

func ErrProviderMissing() *AppError {
	return New(KindProviderMissing, requestPrefix+" No credential provider was configured.")
}

// ---- Request body ----

func ErrNonArrayBody() *AppError {
	return New(KindNonArrayBody, requestPrefix+" Body must be an array.")
}

func ErrEncodingFailure(err error) *AppError {
	return Wrap(KindEncodingFailure, "Unable to encode body for request to Connect server.", err)
}

func ErrInvalidServiceSlug() *AppError {
	return New(KindInvalidServiceSlug, "Invalid Connect service slug provided")
}

func ErrNothingToShip() *AppError {
	return New(KindNothingToShip, "No shipping rate could be calculated. No items in the package are shippable.")
}

func ErrMissingWeight(productID int64) *AppError {
	return New(KindMissingWeight, fmt.Sprintf("Product ( ID: %d ) did not include a weight. Shipping rates cannot be calculated.", productID))
}

// ---- Transport & response ----

func ErrTransport(err error) *AppError {
	return Wrap(KindTransportError, "Connect server request failed", err)
}

func ErrNonJSONErrorStatus(statusCode int) *AppError {
	e := New(KindNonJSONErrorStatus, fmt.Sprintf("Error: The Connect server returned HTTP code: %d", statusCode))
	e.StatusCode = statusCode
	return e
}

func ErrEmptyErrorResponse(statusCode int) *AppError {
	e := New(KindEmptyErrorResponse,
		fmt.Sprintf("Error: The Connect server returned ( %d ) and an empty response body.", statusCode))
	e.StatusCode = statusCode
	return e
}

// ErrServerErrorResponse carries the error/message/data triple reported by the server.
func ErrServerErrorResponse(statusCode int, serverError, serverMessage string, data any) *AppError {
	return &AppError{
		Kind:       KindServerErrorResponse,
		Message:    fmt.Sprintf("Error: The Connect server returned: %s %s ( %d )", serverError, serverMessage, statusCode),
		StatusCode: statusCode,
		Data:       data,
	}
}

func ErrMalformedResponse(err error) *AppError {
	e := Wrap(KindMalformedResponse, "Error: The Connect server returned a malformed JSON body.", err)
	e.StatusCode = 200
	return e
}

// ---- Infrastructure ----

func ErrOptionStore(err error) *AppError {
	return Wrap(KindOptionStore, "Option storage failure", err)
}

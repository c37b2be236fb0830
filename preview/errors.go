package preview

import (
	"errors"
	"net/http"
)

// Sentinel errors.
var (
	// ErrMissingData indicates the data parameter was absent.
	ErrMissingData = errors.New("preview: missing data")

	// ErrInvalidContent indicates the content failed validation.
	ErrInvalidContent = errors.New("preview: invalid content")

	// ErrInvalidToken indicates the integrity token did not match the content.
	ErrInvalidToken = errors.New("preview: invalid integrity token")

	// ErrEncoding indicates the encoder failed or timed out.
	ErrEncoding = errors.New("preview: encoding failed")

	// ErrMalformedArtifact indicates the encoder returned output the
	// formatter could not turn into a response body.
	ErrMalformedArtifact = errors.New("preview: malformed artifact")

	// ErrRateLimited indicates an untokened client exceeded its rate.
	ErrRateLimited = errors.New("preview: rate limited")

	// ErrUnauthorized indicates a missing or invalid admin key.
	ErrUnauthorized = errors.New("preview: unauthorized")
)

// Kind classifies errors for the HTTP boundary.
type Kind int

const (
	KindUnknown Kind = iota
	KindBadRequest
	KindUnauthorized
	KindRateLimited
	KindEncodingFailure
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	case KindEncodingFailure:
		return "encoding_failure"
	default:
		return "unknown"
	}
}

// HTTPStatus maps the kind to a response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified pipeline error. Message is safe to show callers;
// Err carries the cause for logs and errors.Is.
type Error struct {
	Kind    Kind
	Message string
	Details string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil && e.Kind != KindBadRequest {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg, details string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Details: details, Err: err}
}

// KindOf returns the kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// ErrMissingDependency indicates NewService was given a nil store or encoder.
var ErrMissingDependency = errors.New("preview: missing dependency")

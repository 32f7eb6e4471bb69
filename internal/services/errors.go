package services

import (
	"errors"
	"net/http"
)

// ErrorKind classifies failures by who can fix them.
type ErrorKind int

const (
	// KindInput is a caller-fixable problem with the request.
	KindInput ErrorKind = iota + 1
	// KindAuth is a missing or invalid credential.
	KindAuth
	// KindUpstream is a model call failure or unusable model output.
	KindUpstream
	// KindProcessing is a server-side image handling failure.
	KindProcessing
)

func (k ErrorKind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindAuth:
		return "auth"
	case KindUpstream:
		return "upstream"
	case KindProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

var (
	ErrEmptyImage         = errors.New("decoded image is empty")
	ErrModelEmptyResponse = errors.New("model returned no text")
	ErrModelOutputNotJSON = errors.New("model output is not JSON")
)

// BridgeError carries a client-safe message next to the internal cause.
type BridgeError struct {
	Kind    ErrorKind
	Message string // safe to send to clients
	Err     error  // internal cause, never sent
}

func (e *BridgeError) Error() string {
	if e.Err == nil {
		return e.Kind.String() + ": " + e.Message
	}
	return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
}

func (e *BridgeError) Unwrap() error { return e.Err }

func InputError(message string, err error) error {
	return &BridgeError{Kind: KindInput, Message: message, Err: err}
}

func AuthError(message string) error {
	return &BridgeError{Kind: KindAuth, Message: message}
}

func UpstreamError(message string, err error) error {
	return &BridgeError{Kind: KindUpstream, Message: message, Err: err}
}

func ProcessingError(message string, err error) error {
	return &BridgeError{Kind: KindProcessing, Message: message, Err: err}
}

// KindOf returns the kind of the first BridgeError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var be *BridgeError
	if errors.As(err, &be) {
		return be.Kind
	}
	return 0
}

// StatusFor maps an error to the HTTP status sent to the client.
func StatusFor(err error) int {
	switch KindOf(err) {
	case KindInput:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the client-safe message for err.
func PublicMessage(err error) string {
	var be *BridgeError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return "internal error"
}

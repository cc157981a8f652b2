package blogapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound matches, via errors.Is, any APIError that means the document
// does not exist.
var ErrNotFound = errors.New("blogapi: not found")

// APIError is a response whose success flag was false.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("blogapi: api error %d: %s", e.Status, e.Message)
}

// Is reports not-found for 404 responses and for messages saying so.
func (e *APIError) Is(target error) bool {
	if target != ErrNotFound {
		return false
	}
	return e.Status == http.StatusNotFound || strings.Contains(strings.ToLower(e.Message), "not found")
}

// TransportError means the API could not be reached or answered with
// something that is not an envelope.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return "blogapi: " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is, or wraps, a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

package input

import (
	"errors"
	"fmt"
)

// ValidationError reports input rejected before any request was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// HTTPError reports a non-2xx response from the deals API.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// NetworkError reports a transport failure or an undecodable response body.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ErrEmptyQuery is the message used when required-query mode gets no query.
var ErrEmptyQuery = errors.New("enter an item name to search")

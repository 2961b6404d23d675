package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrAllAttemptsFailed is returned when the retry loop ends without capturing an error.
var ErrAllAttemptsFailed = errors.New("all retry attempts failed")

// Error is the generic failure raised when no ErrorExtractor is configured,
// and for failures that never produced a response (network, timeout).
// Status is zero for the latter.
type Error struct {
	Status  int
	Code    string
	Message string
	Body    *Body
	Cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Status == 0 && e.Cause != nil:
		return fmt.Sprintf("transport error: %s: %v", e.Message, e.Cause)
	case e.Code != "":
		return fmt.Sprintf("transport error: status %d: %s (code %s)", e.Status, e.Message, e.Code)
	case e.Status != 0:
		return fmt.Sprintf("transport error: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("transport error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the failure was an attempt exceeding its deadline.
func (e *Error) Timeout() bool {
	return errors.Is(e.Cause, context.DeadlineExceeded)
}

// HTTPStatus maps the failure to the status a proxy should answer with.
func (e *Error) HTTPStatus() int {
	switch {
	case e.Status >= 400:
		return e.Status
	case e.Timeout():
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

// ErrorExtractor knows the remote API's error envelope. The transport asks it
// for the code and message of a failed response and then lets it build the
// error value, so callers receive domain-typed errors.
type ErrorExtractor interface {
	Extract(status int, body *Body) (code, message string)
	Create(status int, message, code string, body *Body) error
}

func (c *Client) statusError(status int, body *Body) error {
	if c.extractor != nil {
		code, message := c.extractor.Extract(status, body)
		if message == "" {
			message = fmt.Sprintf("HTTP %d", status)
		}
		return c.extractor.Create(status, message, code, body)
	}
	return &Error{Status: status, Message: fmt.Sprintf("HTTP %d", status), Body: body}
}

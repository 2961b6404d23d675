package daxtra

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jonathan/parser-service/internal/transport"
)

// APIError is a non-2xx response from the remote service. Code and Message
// come from its CSERROR envelope when one was present.
type APIError struct {
	Status  int
	Code    string
	Message string
	Body    *transport.Body
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("daxtra API error (status %d, code %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("daxtra API error (status %d): %s", e.Status, e.Message)
}

// HTTPStatus returns the remote status.
func (e *APIError) HTTPStatus() int {
	return e.Status
}

// DomainError is a well-formed 200 response that carries a CSERROR envelope.
type DomainError struct {
	Code    string
	Message string
	Body    any
}

func (e *DomainError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("daxtra reported error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("daxtra reported error: %s", e.Message)
}

// HTTPStatus reports the business failure as a client error.
func (e *DomainError) HTTPStatus() int {
	return http.StatusBadRequest
}

// ValidationError means a decoded payload does not have the expected shape.
type ValidationError struct {
	Message string
	Fields  []string
	Body    any
	Cause   error
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if len(e.Fields) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Fields, "; "))
	}
	if e.Cause != nil {
		return fmt.Sprintf("validation error: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("validation error: %s", msg)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// HTTPStatus reports a malformed upstream payload as a server error.
func (e *ValidationError) HTTPStatus() int {
	return http.StatusInternalServerError
}

// UnexpectedResponseTypeError means an operation received the wrong kind of payload.
type UnexpectedResponseTypeError struct {
	Operation string
	Expected  string
	Got       string
}

func (e *UnexpectedResponseTypeError) Error() string {
	return fmt.Sprintf("%s: expected %s response, got %s", e.Operation, e.Expected, e.Got)
}

// HTTPStatus reports the wrong payload kind as a server error.
func (e *UnexpectedResponseTypeError) HTTPStatus() int {
	return http.StatusInternalServerError
}

// NoContinuationTokenError means phase one of a two-phase parse returned no token to redeem.
type NoContinuationTokenError struct {
	Body any
}

func (e *NoContinuationTokenError) Error() string {
	return "no phase2_token or full_profile_token received from personal parsing"
}

// HTTPStatus reports the missing token as a client error.
func (e *NoContinuationTokenError) HTTPStatus() int {
	return http.StatusBadRequest
}

// errorExtractor reads CSERROR envelopes from failed responses.
type errorExtractor struct{}

func (errorExtractor) Extract(status int, body *transport.Body) (code, message string) {
	message = fmt.Sprintf("HTTP %d", status)
	if body == nil {
		return "", message
	}
	obj, ok := body.Value.(map[string]any)
	if !ok {
		return "", message
	}
	env, ok := obj["CSERROR"].(map[string]any)
	if !ok {
		return "", message
	}
	code = scalarString(env["code"])
	if m, ok := env["message"].(string); ok && m != "" {
		message = m
	}
	return code, message
}

func (errorExtractor) Create(status int, message, code string, body *transport.Body) error {
	return &APIError{Status: status, Code: code, Message: message, Body: body}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprintf("%v", v)
}

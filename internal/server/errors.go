package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/parser-service/internal/daxtra"
	"github.com/jonathan/parser-service/internal/transport"
)

// Error types reported in the error envelope.
const (
	ErrorTypeDaXtra       = "daxtra_error"
	ErrorTypeInternal     = "internal_error"
	ErrorTypeFileTooLarge = "file_too_large"
)

const internalErrorMessage = "An unexpected error occurred"

// APIError is the error member of a failed response envelope.
type APIError struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

// ErrFileTooLarge indicates an upload above the size limit
type ErrFileTooLarge struct {
	Limit int64
}

func (e *ErrFileTooLarge) Error() string {
	return fmt.Sprintf("File size exceeds %dMB limit", e.Limit>>20)
}

// ErrNoFile indicates the request carried no file field
type ErrNoFile struct{}

func (e *ErrNoFile) Error() string {
	return "No file uploaded"
}

// statusCoder is implemented by every error raised while talking to the parsing service.
type statusCoder interface {
	HTTPStatus() int
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var fileTooLarge *ErrFileTooLarge
	var noFile *ErrNoFile
	var sc statusCoder
	switch {
	case errors.As(err, &fileTooLarge), errors.As(err, &noFile):
		return http.StatusBadRequest
	case errors.As(err, &sc):
		if status := sc.HTTPStatus(); status >= 400 && status <= 599 {
			return status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// describeError builds the envelope error for err. Errors without a status
// of their own are reported without detail.
func describeError(err error) APIError {
	var fileTooLarge *ErrFileTooLarge
	if errors.As(err, &fileTooLarge) {
		return APIError{Type: ErrorTypeFileTooLarge, Message: fileTooLarge.Error()}
	}

	var sc statusCoder
	if !errors.As(err, &sc) {
		return APIError{Type: ErrorTypeInternal, Message: internalErrorMessage}
	}

	apiErr := APIError{
		Type:    ErrorTypeDaXtra,
		Message: err.Error(),
		Status:  HTTPStatus(err),
	}

	var remote *daxtra.APIError
	var domain *daxtra.DomainError
	var terr *transport.Error
	switch {
	case errors.As(err, &remote):
		apiErr.Code, apiErr.Message = remote.Code, remote.Message
	case errors.As(err, &domain):
		apiErr.Code, apiErr.Message = domain.Code, domain.Message
	case errors.As(err, &terr):
		apiErr.Code, apiErr.Message = terr.Code, terr.Message
	}
	return apiErr
}

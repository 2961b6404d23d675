package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/parser-service/internal/daxtra"
	"github.com/jonathan/parser-service/internal/signing"
	"github.com/jonathan/parser-service/internal/transport"
)

func TestErrFileTooLarge(t *testing.T) {
	err := &ErrFileTooLarge{Limit: 10 << 20}
	assert.Equal(t, "File size exceeds 10MB limit", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
	assert.Equal(t, APIError{Type: "file_too_large", Message: "File size exceeds 10MB limit"}, describeError(err))
}

func TestErrNoFile(t *testing.T) {
	err := &ErrNoFile{}
	assert.Equal(t, "No file uploaded", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "remote status", err: &daxtra.APIError{Status: 404}, want: http.StatusNotFound},
		{name: "domain error", err: &daxtra.DomainError{Message: "bad"}, want: http.StatusBadRequest},
		{name: "validation", err: &daxtra.ValidationError{Message: "bad shape"}, want: http.StatusInternalServerError},
		{name: "unexpected type", err: &daxtra.UnexpectedResponseTypeError{}, want: http.StatusInternalServerError},
		{name: "no token", err: &daxtra.NoContinuationTokenError{}, want: http.StatusBadRequest},
		{name: "timeout", err: &transport.Error{Message: "timed out", Cause: context.DeadlineExceeded}, want: http.StatusGatewayTimeout},
		{name: "network", err: &transport.Error{Message: "refused", Cause: errors.New("dial")}, want: http.StatusBadGateway},
		{name: "wrapped", err: fmt.Errorf("parse: %w", &daxtra.APIError{Status: 429}), want: http.StatusTooManyRequests},
		{name: "signing", err: &signing.Error{Message: "secret is empty"}, want: http.StatusInternalServerError},
		{name: "plain", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestDescribeError(t *testing.T) {
	t.Run("remote error keeps code and message", func(t *testing.T) {
		got := describeError(&daxtra.APIError{Status: 422, Code: "7", Message: "Corrupt document"})
		assert.Equal(t, APIError{Type: "daxtra_error", Code: "7", Message: "Corrupt document", Status: 422}, got)
	})

	t.Run("transport error", func(t *testing.T) {
		got := describeError(&transport.Error{Message: "HTTP request failed", Cause: errors.New("dial")})
		assert.Equal(t, "daxtra_error", got.Type)
		assert.Equal(t, "HTTP request failed", got.Message)
		assert.Equal(t, http.StatusBadGateway, got.Status)
	})

	t.Run("no continuation token uses error text", func(t *testing.T) {
		err := &daxtra.NoContinuationTokenError{}
		got := describeError(err)
		assert.Equal(t, err.Error(), got.Message)
		assert.Equal(t, http.StatusBadRequest, got.Status)
	})

	t.Run("internal errors hide detail", func(t *testing.T) {
		got := describeError(errors.New("db password leaked"))
		assert.Equal(t, APIError{Type: "internal_error", Message: "An unexpected error occurred"}, got)
	})
}

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the client.
var (
	// ErrEmptyEndpoint is returned when a request names no endpoint.
	ErrEmptyEndpoint = errors.New("endpoint cannot be empty")

	// ErrDecode is returned when a response body cannot be decoded.
	ErrDecode = errors.New("decode response")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Endpoint   string

	// Code and Ref come from the API error envelope when present.
	Code    int
	Ref     int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Ref != 0 {
		return fmt.Sprintf("api error (status %d, ref %d) on %s: %s",
			e.StatusCode, e.Ref, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("api error (status %d) on %s: %s",
		e.StatusCode, e.Endpoint, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is an APIError with status 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

type errorEnvelope struct {
	Error struct {
		Code     int    `json:"code"`
		ErrorRef int    `json:"error_ref"`
		Message  string `json:"message"`
	} `json:"error"`
}

// newAPIError builds an APIError from a failed response body. Bodies that
// are not an error envelope fall back to the HTTP status text.
func newAPIError(endpoint string, statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    http.StatusText(statusCode),
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		apiErr.Code = env.Error.Code
		apiErr.Ref = env.Error.ErrorRef
		apiErr.Message = env.Error.Message
	}
	return apiErr
}

package dandelion

import (
	"errors"
	"fmt"
)

// Client errors.
var (
	// ErrMissingToken is returned by NewClient when the token is blank.
	ErrMissingToken = errors.New("dandelion: missing API token")

	// ErrEmptyText is returned when a request has neither text nor URL.
	ErrEmptyText = errors.New("dandelion: empty text")

	// ErrInvalidProxyAddress is returned when the proxy address is not "host:port".
	ErrInvalidProxyAddress = errors.New("dandelion: invalid proxy address format: expected host:port")

	// ErrResponseTooLarge is returned when the response body exceeds the configured limit.
	ErrResponseTooLarge = errors.New("dandelion: response body too large")

	// ErrInvalidResponse is returned when a 2xx response cannot be decoded.
	ErrInvalidResponse = errors.New("dandelion: invalid response")
)

// APIError is returned when the API answers with a non-2xx status.
// Code and Message are taken from the API's JSON error body when present;
// Body always holds the raw response text.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

// Error returns "Dandelion API error <status>: <message or body>".
func (e *APIError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = e.Body
	}
	return fmt.Sprintf("Dandelion API error %d: %s", e.StatusCode, detail)
}

// IsAuthError reports whether the API rejected the token.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == 401 || e.StatusCode == 403 || e.Code == "error.authenticationError"
}

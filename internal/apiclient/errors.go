package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Errors returned by the API client.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoBaseURL    = errors.New("base URL is required")
)

// GenericMessage is shown when neither the server nor the transport gave anything useful.
const GenericMessage = "Something went wrong. Please try again."

// Error is a non-2xx answer from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// Message normalizes err into a string fit for a notification or an empty
// state. The server's message wins; fallback is used otherwise.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if fallback == "" {
		fallback = GenericMessage
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The server took too long to respond. Please try again."
	}
	if errors.Is(err, ErrUnauthorized) {
		return "Your session has expired. Please sign in again."
	}
	return fallback
}

// StatusCode returns the backend status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

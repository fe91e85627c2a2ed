package analysis

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("analysis not configured")

	// ErrAuthentication is returned when the API rejects the key.
	ErrAuthentication = errors.New("analysis authentication failed")

	// ErrEmptyQuery is returned for a blank question.
	ErrEmptyQuery = errors.New("empty query")

	// ErrEmptyResponse is returned when the model produced no candidates.
	ErrEmptyResponse = errors.New("analysis returned an empty response")
)

// authMarkers identify authentication failures reported with other status
// codes, e.g. 400 "API key not valid".
var authMarkers = []string{"api key", "permission denied", "authentication"}

// APIError is a non-2xx response from the Gemini API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini API returned %d: %s", e.StatusCode, e.Message)
}

// classify wraps authentication failures with ErrAuthentication.
func classify(err *APIError) error {
	if err.StatusCode == http.StatusUnauthorized || err.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	msg := strings.ToLower(err.Message)
	for _, m := range authMarkers {
		if strings.Contains(msg, m) {
			return fmt.Errorf("%w: %w", ErrAuthentication, err)
		}
	}
	return err
}

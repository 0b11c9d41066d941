package strava

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	go_json "github.com/goccy/go-json"
)

// ErrCredentialInvalid marks an unrecoverable token failure. It must be
// surfaced to the caller as an authentication failure, never retried with
// the stale token.
var ErrCredentialInvalid = errors.New("strava credential invalid - reauthorization required")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("strava api: %d %s", e.StatusCode, e.Message)
}

// MalformedPayloadError marks an upstream response whose shape did not
// match the expected schema.
type MalformedPayloadError struct {
	Path  string
	Cause error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("strava api: malformed payload from %s: %v", e.Path, e.Cause)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Cause }

// IsCredentialError reports whether err requires re-authorization rather
// than a retry.
func IsCredentialError(err error) bool {
	if errors.Is(err, ErrCredentialInvalid) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

func parseAPIError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
		}
	}

	var errResp struct {
		Message string `json:"message"`
	}

	if err := go_json.Unmarshal(body, &errResp); err != nil || errResp.Message == "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    errResp.Message,
	}
}

package oura

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	go_json "github.com/goccy/go-json"
)

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("oura api: %d %s", e.StatusCode, e.Message)
}

type MalformedPayloadError struct {
	Path  string
	Cause error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("oura api: malformed payload from %s: %v", e.Path, e.Cause)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Cause }

// IsCredentialError reports whether err requires re-authorization.
func IsCredentialError(err error) bool {
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
		Detail string `json:"detail"`
	}

	if err := go_json.Unmarshal(body, &errResp); err != nil || errResp.Detail == "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    errResp.Detail,
	}
}

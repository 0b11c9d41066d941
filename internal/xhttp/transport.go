package xhttp

import (
	"fmt"
	"net/http"
)

const userAgent = "stridelog/1.0"

type stridelogTransport struct {
	base http.RoundTripper
}

var _ http.RoundTripper = (*stridelogTransport)(nil)

func (t *stridelogTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform round trip: %w", err)
	}
	return resp, nil
}

// NewTransport returns an http.RoundTripper with standard stridelog headers.
func NewTransport() http.RoundTripper {
	return &stridelogTransport{base: http.DefaultTransport}
}

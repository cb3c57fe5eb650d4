package domain

import (
	"net/http"
	"time"
)

// NewAuthenticatedClient returns an HTTP client for the GraphQL backend.
// When token is non-empty every request carries "Authorization: Bearer <token>".
// A zero timeout leaves requests unbounded.
func NewAuthenticatedClient(token string, timeout time.Duration) *http.Client {
	var transport http.RoundTripper = http.DefaultTransport
	if token != "" {
		transport = &authenticatedTransport{
			base:  http.DefaultTransport,
			token: token,
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// authenticatedTransport is an http.RoundTripper that adds the bearer header.
type authenticatedTransport struct {
	base  http.RoundTripper
	token string
}

// RoundTrip implements http.RoundTripper by adding authentication headers to requests.
func (t *authenticatedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	clonedReq := req.Clone(req.Context())
	clonedReq.Header.Set("Authorization", "Bearer "+t.token)

	return t.base.RoundTrip(clonedReq)
}

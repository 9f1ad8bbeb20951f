package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"connect-client/internal/core/domain"
	"connect-client/internal/core/ports"
	"connect-client/pkg/apperror"
)

// DefaultTimeout bounds every Connect server round trip.
const DefaultTimeout = 20 * time.Second

// HTTPTransport implements ports.Transport over net/http.
type HTTPTransport struct {
	httpClient ports.HTTPClient
}

// NewHTTPClient returns an *http.Client with the Connect transport policy:
// redirects are returned as-is, compressed responses are accepted.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.DisableCompression = false
	return &http.Client{
		Timeout:   timeout,
		Transport: base,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// NewHTTPTransport creates a transport. A nil client gets NewHTTPClient(DefaultTimeout).
func NewHTTPTransport(httpClient ports.HTTPClient) *HTTPTransport {
	if httpClient == nil {
		httpClient = NewHTTPClient(DefaultTimeout)
	}
	return &HTTPTransport{httpClient: httpClient}
}

// Send performs a single exchange. Only POST and PUT requests carry a body.
func (t *HTTPTransport) Send(ctx context.Context, out *domain.OutboundRequest) (*domain.RawResponse, error) {
	var body io.Reader
	if domain.MethodHasBody(out.Method) && out.Body != nil {
		body = bytes.NewReader(out.Body)
	}

	req, err := http.NewRequestWithContext(ctx, out.Method, out.URL, body)
	if err != nil {
		return nil, apperror.ErrTransport(fmt.Errorf("creating request: %w", err))
	}
	for name, values := range out.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, apperror.ErrTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.ErrTransport(fmt.Errorf("reading response body: %w", err))
	}

	return &domain.RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

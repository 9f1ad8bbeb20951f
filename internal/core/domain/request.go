package domain

import (
	"net/http"
	"strings"
)

// RequestEnvelope is a caller's request before it is signed and sent.
type RequestEnvelope struct {
	Method string
	Path   string
	Body   map[string]any
}

// HasBody reports whether the method carries a serialized body.
// Only POST and PUT do.
func (e *RequestEnvelope) HasBody() bool {
	return MethodHasBody(e.Method)
}

// MethodHasBody reports whether requests with this method carry a body.
func MethodHasBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPut
}

// OutboundRequest is the fully assembled request handed to the transport.
type OutboundRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte // nil for methods without a body
}

// RawResponse is an undecoded server response.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ContentType returns the response Content-Type header.
func (r *RawResponse) ContentType() string {
	if r.Header == nil {
		return ""
	}
	return r.Header.Get("Content-Type")
}

// IsJSONContentType reports whether a Content-Type value declares a JSON body.
func IsJSONContentType(contentType string) bool {
	return strings.Contains(contentType, "application/json")
}

package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New(KindMissingCredential, "token missing"),
			expected: "[missing_token] token missing",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap(KindTransportError, "request failed", fmt.Errorf("connection refused")),
			expected: "[transport_error] request failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("dial tcp: i/o timeout")
	appErr := ErrTransport(inner)

	assert.True(t, errors.Is(appErr, inner))
	assert.Nil(t, ErrMissingCredential().Unwrap())
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("calling services: %w", ErrStaleSignature())

	assert.Equal(t, KindStaleSignature, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindStaleSignature))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, Is(nil, KindStaleSignature))
}

func TestCredentialErrors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		kind Kind
	}{
		{"MissingCredential", ErrMissingCredential(), KindMissingCredential},
		{"MalformedCredential", ErrMalformedCredential(), KindMalformedCredential},
		{"StaleSignature", ErrStaleSignature(), KindStaleSignature},
		{"ProviderMissing", ErrProviderMissing(), KindProviderMissing},
		{"NonArrayBody", ErrNonArrayBody(), KindNonArrayBody},
		{"InvalidServiceSlug", ErrInvalidServiceSlug(), KindInvalidServiceSlug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Zero(t, tt.err.StatusCode)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestResponseErrors(t *testing.T) {
	nonJSON := ErrNonJSONErrorStatus(502)
	assert.Equal(t, KindNonJSONErrorStatus, nonJSON.Kind)
	assert.Equal(t, 502, nonJSON.StatusCode)
	assert.Contains(t, nonJSON.Message, "HTTP code: 502")

	empty := ErrEmptyErrorResponse(500)
	assert.Equal(t, KindEmptyErrorResponse, empty.Kind)
	assert.Equal(t, 500, empty.StatusCode)

	data := map[string]any{"field": "x"}
	server := ErrServerErrorResponse(422, "invalid_input", "bad field", data)
	assert.Equal(t, KindServerErrorResponse, server.Kind)
	assert.Equal(t, 422, server.StatusCode)
	assert.Equal(t, data, server.Data)
	assert.Equal(t, "Error: The Connect server returned: invalid_input bad field ( 422 )", server.Message)
}

func TestInfrastructureErrors(t *testing.T) {
	inner := fmt.Errorf("redis: connection closed")
	err := ErrOptionStore(inner)
	assert.Equal(t, KindOptionStore, err.Kind)
	assert.True(t, errors.Is(err, inner))

	enc := ErrEncodingFailure(inner)
	assert.Equal(t, KindEncodingFailure, enc.Kind)
	assert.True(t, errors.Is(enc, inner))
}

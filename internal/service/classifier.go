package service

import (
	"bytes"
	"encoding/json"
	"net/http"

	"connect-client/internal/core/domain"
	"connect-client/pkg/apperror"
)

// ResponseClassifier maps raw server responses to outcomes or typed failures.
type ResponseClassifier struct{}

// NewResponseClassifier creates a classifier.
func NewResponseClassifier() *ResponseClassifier {
	return &ResponseClassifier{}
}

// Classify applies the decision table:
//
//	non-JSON, 200  -> raw response, untouched
//	non-JSON, !200 -> wcc_server_error
//	JSON, 200      -> decoded body (malformed_response if undecodable)
//	JSON, !200     -> wcc_server_empty_response or wcc_server_error_response
//
// Only status 200 counts as success.
func (c *ResponseClassifier) Classify(resp *domain.RawResponse) (*domain.Outcome, error) {
	if !domain.IsJSONContentType(resp.ContentType()) {
		if resp.StatusCode != http.StatusOK {
			return nil, apperror.ErrNonJSONErrorStatus(resp.StatusCode)
		}
		return &domain.Outcome{Kind: domain.OutcomeRaw, Raw: resp}, nil
	}

	var decoded any
	var decodeErr error
	if len(bytes.TrimSpace(resp.Body)) > 0 {
		decodeErr = json.Unmarshal(resp.Body, &decoded)
	}

	if resp.StatusCode != http.StatusOK {
		if decodeErr != nil || isEmptyJSON(decoded) {
			return nil, apperror.ErrEmptyErrorResponse(resp.StatusCode)
		}
		return nil, serverError(resp.StatusCode, decoded)
	}

	if decodeErr != nil {
		return nil, apperror.ErrMalformedResponse(decodeErr)
	}
	return &domain.Outcome{Kind: domain.OutcomeSuccess, Value: decoded, Raw: resp}, nil
}

// serverError extracts error/message/data from an error body; missing fields become "".
func serverError(statusCode int, decoded any) *apperror.AppError {
	fields, _ := decoded.(map[string]any)

	var data any = ""
	if d, ok := fields["data"]; ok {
		data = d
	}
	return apperror.ErrServerErrorResponse(statusCode, stringField(fields, "error"), stringField(fields, "message"), data)
}

func stringField(fields map[string]any, name string) string {
	switch v := fields[name].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

// isEmptyJSON reports scalar or array bodies that count as empty: null, false,
// 0, "", "0" and []. An object, even {}, is never empty.
func isEmptyJSON(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == "" || t == "0"
	case []any:
		return len(t) == 0
	}
	return false
}

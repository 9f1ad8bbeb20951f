package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutcomeKind tags a successful response.
type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success" // JSON body decoded into Value
	OutcomeRaw     OutcomeKind = "raw"     // non-JSON 200 response, returned untouched
)

// Outcome is the successful result of a Connect call. Failures are returned
// as *apperror.AppError instead.
type Outcome struct {
	Kind  OutcomeKind
	Value any
	Raw   *RawResponse
}

// RequestLog records one completed call for later inspection.
type RequestLog struct {
	ID         uuid.UUID     `json:"id"`
	Method     string        `json:"method"`
	Path       string        `json:"path"`
	StatusCode int           `json:"status_code"`
	Outcome    string        `json:"outcome"` // OutcomeKind or apperror.Kind
	Duration   time.Duration `json:"duration"`
	CreatedAt  time.Time     `json:"created_at"`
}

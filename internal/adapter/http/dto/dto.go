package dto

// EchoResponse is returned by sandbox routes that reflect a signed request.
type EchoResponse struct {
	Method         string `json:"method"`
	Path           string `json:"path"`
	TokenKey       string `json:"token_key"`
	APIVersion     int    `json:"api_version"`
	ExternalUserID int64  `json:"external_user_id"`
	Body           any    `json:"body,omitempty"`
}

// LabelStatus is the sandbox reply for a label status lookup.
type LabelStatus struct {
	LabelID int64  `json:"label_id"`
	Status  string `json:"status"`
}

// DependencyStatus is one entry of the health report.
type DependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]DependencyStatus `json:"dependencies"`
}

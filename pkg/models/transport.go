package models

// AnalysisRequest is the body accepted by POST /analyze.
// Text is a pointer so a missing key can be told apart from an empty string.
type AnalysisRequest struct {
	Text *string `json:"text"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

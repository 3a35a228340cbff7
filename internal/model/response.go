package model

// ErrorResponse is the JSON shape returned on failure.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// RateLimitResponse is returned with HTTP 429 when the admission gate denies a request.
type RateLimitResponse struct {
	Error      string `json:"error"`
	RetryAfter string `json:"retryAfter"` // ISO-8601
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

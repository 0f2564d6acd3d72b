package domain

// SummaryRequest is the body of POST /api/eco-summary
type SummaryRequest struct {
	ProductName string `json:"productName"`
	Brand       string `json:"brand"`
	Categories  string `json:"categories"`
}

// SummaryResponse is the success body of POST /api/eco-summary
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// ErrorResponse is the error body used by the HTTP API
type ErrorResponse struct {
	Error string `json:"error"`
}

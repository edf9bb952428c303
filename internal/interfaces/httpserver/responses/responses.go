// Package responses contains HTTP response DTOs and error helpers shared by
// the v1 routes. Resource-specific shapes live in subpackages.
package responses

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error *ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Pagination echoes the page window of a list response.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	HasMore  bool  `json:"has_more"`
}

// NewPagination builds the page block for a list response.
func NewPagination(page, pageSize int, total int64) Pagination {
	return Pagination{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		HasMore:  int64(page*pageSize) < total,
	}
}

// Package directoryreq contains HTTP request DTOs for directory endpoints.
package directoryreq

// CreatePlatformRequest registers a hiring platform.
type CreatePlatformRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug"`
}

// CreateAccountRequest registers a login on a platform.
type CreateAccountRequest struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	// IsActive defaults to true.
	IsActive *bool `json:"is_active"`
}

// SetAccountActiveRequest toggles whether the account receives new chats.
type SetAccountActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// CreateJobTypeRequest registers a job type.
type CreateJobTypeRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateJobPostingRequest registers a posting for a job type on a platform.
type CreateJobPostingRequest struct {
	JobTypeID  string `json:"job_type_id" binding:"required"`
	PlatformID string `json:"platform_id" binding:"required"`
	Title      string `json:"title" binding:"required"`
	URL        string `json:"url"`
}

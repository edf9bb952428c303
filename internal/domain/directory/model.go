package directory

import "time"

// Platform is an external hiring platform such as Upwork or Fiverr.
type Platform struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// PlatformAccount is an operator-managed login on a platform. Only active
// accounts receive auto-created conversations.
type PlatformAccount struct {
	ID         string    `json:"id"`
	PlatformID string    `json:"platform_id"`
	Name       string    `json:"name"`
	Username   string    `json:"username"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// JobType groups postings and conversations by role.
type JobType struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// JobPosting is a concrete opening published on a platform.
type JobPosting struct {
	ID         string    `json:"id"`
	JobTypeID  string    `json:"job_type_id"`
	PlatformID string    `json:"platform_id"`
	Title      string    `json:"title"`
	URL        string    `json:"url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

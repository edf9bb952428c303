package directory

import "context"

// Repository persists directory records.
type Repository interface {
	CreatePlatform(ctx context.Context, platform *Platform) error
	GetPlatform(ctx context.Context, id string) (*Platform, error)
	ListPlatforms(ctx context.Context) ([]*Platform, error)

	CreateAccount(ctx context.Context, account *PlatformAccount) error
	GetAccount(ctx context.Context, id string) (*PlatformAccount, error)
	ListAccounts(ctx context.Context, platformID string) ([]*PlatformAccount, error)
	SetAccountActive(ctx context.Context, id string, active bool) (*PlatformAccount, error)
	// FindActiveAccount returns the oldest active account for the platform.
	FindActiveAccount(ctx context.Context, platformID string) (*PlatformAccount, error)

	CreateJobType(ctx context.Context, jobType *JobType) error
	GetJobType(ctx context.Context, id string) (*JobType, error)
	ListJobTypes(ctx context.Context) ([]*JobType, error)

	CreateJobPosting(ctx context.Context, posting *JobPosting) error
	ListJobPostings(ctx context.Context, jobTypeID string) ([]*JobPosting, error)
}

package directory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Chibuzo15/crm-project-sub000/internal/utils/platformerrors"
)

// Service exposes platform, account, and job catalog operations.
type Service interface {
	CreatePlatform(ctx context.Context, name, slug string) (*Platform, error)
	GetPlatform(ctx context.Context, id string) (*Platform, error)
	ListPlatforms(ctx context.Context) ([]*Platform, error)

	CreateAccount(ctx context.Context, platformID, name, username string, active bool) (*PlatformAccount, error)
	GetAccount(ctx context.Context, id string) (*PlatformAccount, error)
	ListAccounts(ctx context.Context, platformID string) ([]*PlatformAccount, error)
	SetAccountActive(ctx context.Context, id string, active bool) (*PlatformAccount, error)
	ResolveActiveAccount(ctx context.Context, platformID string) (*PlatformAccount, error)

	CreateJobType(ctx context.Context, name string) (*JobType, error)
	GetJobType(ctx context.Context, id string) (*JobType, error)
	ListJobTypes(ctx context.Context) ([]*JobType, error)

	CreateJobPosting(ctx context.Context, jobTypeID, platformID, title, url string) (*JobPosting, error)
	ListJobPostings(ctx context.Context, jobTypeID string) ([]*JobPosting, error)
}

type service struct {
	repo Repository
	log  zerolog.Logger
}

// NewService wires the directory service with its repository.
func NewService(repo Repository, log zerolog.Logger) Service {
	return &service{
		repo: repo,
		log:  log.With().Str("component", "directory-service").Logger(),
	}
}

func (s *service) CreatePlatform(ctx context.Context, name, slug string) (*Platform, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid(ctx, "platform name is required", "directory-platform-name")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = slugify(name)
	}

	platform := &Platform{ID: uuid.NewString(), Name: name, Slug: slug}
	if err := s.repo.CreatePlatform(ctx, platform); err != nil {
		return nil, err
	}
	s.log.Info().Str("platform_id", platform.ID).Str("slug", platform.Slug).Msg("platform created")
	return platform, nil
}

func (s *service) GetPlatform(ctx context.Context, id string) (*Platform, error) {
	if err := validateID(ctx, id, "platform id"); err != nil {
		return nil, err
	}
	return s.repo.GetPlatform(ctx, id)
}

func (s *service) ListPlatforms(ctx context.Context) ([]*Platform, error) {
	return s.repo.ListPlatforms(ctx)
}

func (s *service) CreateAccount(ctx context.Context, platformID, name, username string, active bool) (*PlatformAccount, error) {
	if _, err := s.GetPlatform(ctx, platformID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid(ctx, "account name is required", "directory-account-name")
	}

	account := &PlatformAccount{
		ID:         uuid.NewString(),
		PlatformID: platformID,
		Name:       name,
		Username:   strings.TrimSpace(username),
		IsActive:   active,
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	s.log.Info().Str("account_id", account.ID).Str("platform_id", platformID).Bool("active", active).Msg("platform account created")
	return account, nil
}

func (s *service) GetAccount(ctx context.Context, id string) (*PlatformAccount, error) {
	if err := validateID(ctx, id, "account id"); err != nil {
		return nil, err
	}
	return s.repo.GetAccount(ctx, id)
}

func (s *service) ListAccounts(ctx context.Context, platformID string) ([]*PlatformAccount, error) {
	if platformID != "" {
		if err := validateID(ctx, platformID, "platform id"); err != nil {
			return nil, err
		}
	}
	return s.repo.ListAccounts(ctx, platformID)
}

func (s *service) SetAccountActive(ctx context.Context, id string, active bool) (*PlatformAccount, error) {
	if err := validateID(ctx, id, "account id"); err != nil {
		return nil, err
	}
	return s.repo.SetAccountActive(ctx, id, active)
}

// ResolveActiveAccount finds the account that owns auto-created conversations
// for a platform. A missing platform is NotFound; a platform without an active
// account is NoActiveAccount.
func (s *service) ResolveActiveAccount(ctx context.Context, platformID string) (*PlatformAccount, error) {
	if _, err := s.GetPlatform(ctx, platformID); err != nil {
		return nil, err
	}

	account, err := s.repo.FindActiveAccount(ctx, platformID)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return nil, platformerrors.NewErrorWithContext(
				ctx,
				platformerrors.LayerDomain,
				platformerrors.ErrorTypeNoActiveAccount,
				"no active account for platform",
				err,
				"directory-no-active-account",
				map[string]any{"platform_id": platformID},
			)
		}
		return nil, err
	}
	return account, nil
}

func (s *service) CreateJobType(ctx context.Context, name string) (*JobType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid(ctx, "job type name is required", "directory-job-type-name")
	}
	jobType := &JobType{ID: uuid.NewString(), Name: name}
	if err := s.repo.CreateJobType(ctx, jobType); err != nil {
		return nil, err
	}
	return jobType, nil
}

func (s *service) GetJobType(ctx context.Context, id string) (*JobType, error) {
	if err := validateID(ctx, id, "job type id"); err != nil {
		return nil, err
	}
	return s.repo.GetJobType(ctx, id)
}

func (s *service) ListJobTypes(ctx context.Context) ([]*JobType, error) {
	return s.repo.ListJobTypes(ctx)
}

func (s *service) CreateJobPosting(ctx context.Context, jobTypeID, platformID, title, url string) (*JobPosting, error) {
	if _, err := s.GetJobType(ctx, jobTypeID); err != nil {
		return nil, err
	}
	if _, err := s.GetPlatform(ctx, platformID); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, invalid(ctx, "job posting title is required", "directory-posting-title")
	}

	posting := &JobPosting{
		ID:         uuid.NewString(),
		JobTypeID:  jobTypeID,
		PlatformID: platformID,
		Title:      title,
		URL:        strings.TrimSpace(url),
	}
	if err := s.repo.CreateJobPosting(ctx, posting); err != nil {
		return nil, err
	}
	return posting, nil
}

func (s *service) ListJobPostings(ctx context.Context, jobTypeID string) ([]*JobPosting, error) {
	if jobTypeID != "" {
		if err := validateID(ctx, jobTypeID, "job type id"); err != nil {
			return nil, err
		}
	}
	return s.repo.ListJobPostings(ctx, jobTypeID)
}

func validateID(ctx context.Context, id, field string) error {
	if _, err := uuid.Parse(id); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"malformed "+field, err, "directory-malformed-id")
	}
	return nil
}

func invalid(ctx context.Context, message, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, message, nil, code)
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

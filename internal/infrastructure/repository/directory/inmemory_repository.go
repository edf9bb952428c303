package directory

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/Chibuzo15/crm-project-sub000/internal/domain/directory"
	"github.com/Chibuzo15/crm-project-sub000/internal/utils/platformerrors"
)

// InMemoryRepository is a thread-safe directory store for demos and tests.
type InMemoryRepository struct {
	mu        sync.RWMutex
	platforms map[string]domain.Platform
	accounts  map[string]domain.PlatformAccount
	jobTypes  map[string]domain.JobType
	postings  map[string]domain.JobPosting
	now       func() time.Time
}

// NewInMemoryRepository returns an empty directory.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		platforms: make(map[string]domain.Platform),
		accounts:  make(map[string]domain.PlatformAccount),
		jobTypes:  make(map[string]domain.JobType),
		postings:  make(map[string]domain.JobPosting),
		now:       time.Now,
	}
}

// stamp returns a strictly increasing creation time so "oldest first" is stable.
func (r *InMemoryRepository) stamp(existing int) time.Time {
	return r.now().UTC().Add(time.Duration(existing) * time.Nanosecond)
}

func (r *InMemoryRepository) CreatePlatform(ctx context.Context, platform *domain.Platform) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.platforms {
		if p.Slug == platform.Slug {
			return conflict(ctx, "platform slug already exists", "platform-slug-exists")
		}
	}
	if platform.CreatedAt.IsZero() {
		platform.CreatedAt = r.stamp(len(r.platforms))
	}
	r.platforms[platform.ID] = *platform
	return nil
}

func (r *InMemoryRepository) GetPlatform(ctx context.Context, id string) (*domain.Platform, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.platforms[id]
	if !ok {
		return nil, notFound(ctx, "platform not found", "platform-not-found")
	}
	return &p, nil
}

func (r *InMemoryRepository) ListPlatforms(ctx context.Context) ([]*domain.Platform, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Platform, 0, len(r.platforms))
	for _, p := range r.platforms {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *InMemoryRepository) CreateAccount(ctx context.Context, account *domain.PlatformAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.platforms[account.PlatformID]; !ok {
		return notFound(ctx, "platform not found", "platform-not-found")
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = r.stamp(len(r.accounts))
	}
	r.accounts[account.ID] = *account
	return nil
}

func (r *InMemoryRepository) GetAccount(ctx context.Context, id string) (*domain.PlatformAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, notFound(ctx, "platform account not found", "account-not-found")
	}
	return &a, nil
}

func (r *InMemoryRepository) ListAccounts(ctx context.Context, platformID string) ([]*domain.PlatformAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.accountsLocked(platformID, false), nil
}

func (r *InMemoryRepository) accountsLocked(platformID string, activeOnly bool) []*domain.PlatformAccount {
	out := make([]*domain.PlatformAccount, 0)
	for _, a := range r.accounts {
		if platformID != "" && a.PlatformID != platformID {
			continue
		}
		if activeOnly && !a.IsActive {
			continue
		}
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *InMemoryRepository) SetAccountActive(ctx context.Context, id string, active bool) (*domain.PlatformAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, notFound(ctx, "platform account not found", "account-not-found")
	}
	a.IsActive = active
	r.accounts[id] = a
	return &a, nil
}

func (r *InMemoryRepository) FindActiveAccount(ctx context.Context, platformID string) (*domain.PlatformAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := r.accountsLocked(platformID, true)
	if len(active) == 0 {
		return nil, notFound(ctx, "no active account for platform", "account-active-not-found")
	}
	return active[0], nil
}

func (r *InMemoryRepository) CreateJobType(ctx context.Context, jobType *domain.JobType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, j := range r.jobTypes {
		if j.Name == jobType.Name {
			return conflict(ctx, "job type already exists", "job-type-exists")
		}
	}
	if jobType.CreatedAt.IsZero() {
		jobType.CreatedAt = r.stamp(len(r.jobTypes))
	}
	r.jobTypes[jobType.ID] = *jobType
	return nil
}

func (r *InMemoryRepository) GetJobType(ctx context.Context, id string) (*domain.JobType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobTypes[id]
	if !ok {
		return nil, notFound(ctx, "job type not found", "job-type-not-found")
	}
	return &j, nil
}

func (r *InMemoryRepository) ListJobTypes(ctx context.Context) ([]*domain.JobType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.JobType, 0, len(r.jobTypes))
	for _, j := range r.jobTypes {
		j := j
		out = append(out, &j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *InMemoryRepository) CreateJobPosting(ctx context.Context, posting *domain.JobPosting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if posting.CreatedAt.IsZero() {
		posting.CreatedAt = r.stamp(len(r.postings))
	}
	r.postings[posting.ID] = *posting
	return nil
}

func (r *InMemoryRepository) ListJobPostings(ctx context.Context, jobTypeID string) ([]*domain.JobPosting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.JobPosting, 0)
	for _, p := range r.postings {
		if jobTypeID != "" && p.JobTypeID != jobTypeID {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func notFound(ctx context.Context, message, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, message, nil, code)
}

func conflict(ctx context.Context, message, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict, message, nil, code)
}

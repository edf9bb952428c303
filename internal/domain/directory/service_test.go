package directory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/directory"
	repo "github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/repository/directory"
	"github.com/Chibuzo15/crm-project-sub000/internal/utils/platformerrors"
)

func newService() directory.Service {
	return directory.NewService(repo.NewInMemoryRepository(), zerolog.Nop())
}

func TestCreatePlatformDerivesSlug(t *testing.T) {
	svc := newService()
	platform, err := svc.CreatePlatform(context.Background(), "We Work Remotely", "")
	require.NoError(t, err)
	assert.Equal(t, "we-work-remotely", platform.Slug)

	_, err = svc.CreatePlatform(context.Background(), " ", "")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}

func TestResolveActiveAccount(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	platform, err := svc.CreatePlatform(ctx, "Upwork", "upwork")
	require.NoError(t, err)

	_, err = svc.ResolveActiveAccount(ctx, platform.ID)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNoActiveAccount), "no accounts yet")

	inactive, err := svc.CreateAccount(ctx, platform.ID, "Old", "old-login", false)
	require.NoError(t, err)
	_, err = svc.ResolveActiveAccount(ctx, platform.ID)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNoActiveAccount), "only inactive accounts")

	active, err := svc.CreateAccount(ctx, platform.ID, "Main", "acme", true)
	require.NoError(t, err)
	resolved, err := svc.ResolveActiveAccount(ctx, platform.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, resolved.ID)

	_, err = svc.SetAccountActive(ctx, inactive.ID, true)
	require.NoError(t, err)
	resolved, err = svc.ResolveActiveAccount(ctx, platform.ID)
	require.NoError(t, err)
	assert.Equal(t, inactive.ID, resolved.ID, "the oldest active account wins")
}

func TestResolveActiveAccountUnknownPlatform(t *testing.T) {
	svc := newService()
	_, err := svc.ResolveActiveAccount(context.Background(), uuid.NewString())
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))

	_, err = svc.ResolveActiveAccount(context.Background(), "upwork")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}

func TestJobCatalog(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	platform, err := svc.CreatePlatform(ctx, "Fiverr", "")
	require.NoError(t, err)
	jobType, err := svc.CreateJobType(ctx, "Backend Engineer")
	require.NoError(t, err)

	_, err = svc.CreateJobType(ctx, "Backend Engineer")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict))

	posting, err := svc.CreateJobPosting(ctx, jobType.ID, platform.ID, "Senior Go Developer", "https://example.com/job/1")
	require.NoError(t, err)

	postings, err := svc.ListJobPostings(ctx, jobType.ID)
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, posting.ID, postings[0].ID)

	_, err = svc.CreateJobPosting(ctx, uuid.NewString(), platform.ID, "Ghost", "")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}

func TestGetAccount(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	platform, err := svc.CreatePlatform(ctx, "LinkedIn", "")
	require.NoError(t, err)
	account, err := svc.CreateAccount(ctx, platform.ID, "Recruiter", "acme-recruiting", true)
	require.NoError(t, err)

	got, err := svc.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme-recruiting", got.Username)

	_, err = svc.GetAccount(ctx, uuid.NewString())
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}

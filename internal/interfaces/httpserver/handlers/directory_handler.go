package handlers

import (
	"context"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/directory"
)

// DirectoryHandler handles platform, account, and job catalog requests.
type DirectoryHandler struct {
	service directory.Service
}

// NewDirectoryHandler creates a new directory handler.
func NewDirectoryHandler(service directory.Service) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

// CreatePlatform registers a platform.
func (h *DirectoryHandler) CreatePlatform(ctx context.Context, name, slug string) (*directory.Platform, error) {
	return h.service.CreatePlatform(ctx, name, slug)
}

// ListPlatforms lists every platform.
func (h *DirectoryHandler) ListPlatforms(ctx context.Context) ([]*directory.Platform, error) {
	return h.service.ListPlatforms(ctx)
}

// CreateAccount registers an account under an existing platform.
func (h *DirectoryHandler) CreateAccount(ctx context.Context, platformID, name, username string, active bool) (*directory.PlatformAccount, error) {
	return h.service.CreateAccount(ctx, platformID, name, username, active)
}

// ListAccounts lists the accounts of a platform.
func (h *DirectoryHandler) ListAccounts(ctx context.Context, platformID string) ([]*directory.PlatformAccount, error) {
	if _, err := h.service.GetPlatform(ctx, platformID); err != nil {
		return nil, err
	}
	return h.service.ListAccounts(ctx, platformID)
}

// SetAccountActive toggles an account.
func (h *DirectoryHandler) SetAccountActive(ctx context.Context, id string, active bool) (*directory.PlatformAccount, error) {
	return h.service.SetAccountActive(ctx, id, active)
}

// CreateJobType registers a job type.
func (h *DirectoryHandler) CreateJobType(ctx context.Context, name string) (*directory.JobType, error) {
	return h.service.CreateJobType(ctx, name)
}

// ListJobTypes lists every job type.
func (h *DirectoryHandler) ListJobTypes(ctx context.Context) ([]*directory.JobType, error) {
	return h.service.ListJobTypes(ctx)
}

// CreateJobPosting registers a posting.
func (h *DirectoryHandler) CreateJobPosting(ctx context.Context, jobTypeID, platformID, title, url string) (*directory.JobPosting, error) {
	return h.service.CreateJobPosting(ctx, jobTypeID, platformID, title, url)
}

// ListJobPostings lists postings, optionally for one job type.
func (h *DirectoryHandler) ListJobPostings(ctx context.Context, jobTypeID string) ([]*directory.JobPosting, error) {
	return h.service.ListJobPostings(ctx, jobTypeID)
}

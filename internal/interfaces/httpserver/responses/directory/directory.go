// Package directoryres contains HTTP response DTOs for directory endpoints.
package directoryres

import "github.com/Chibuzo15/crm-project-sub000/internal/domain/directory"

// ListResponse wraps a directory listing.
type ListResponse[T any] struct {
	Object string `json:"object"`
	Data   []T    `json:"data"`
}

// PlatformList is a list of platforms.
type PlatformList = ListResponse[*directory.Platform]

// AccountList is a list of platform accounts.
type AccountList = ListResponse[*directory.PlatformAccount]

// JobTypeList is a list of job types.
type JobTypeList = ListResponse[*directory.JobType]

// JobPostingList is a list of job postings.
type JobPostingList = ListResponse[*directory.JobPosting]

// NewList wraps items, never returning a null data array.
func NewList[T any](items []T) *ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return &ListResponse[T]{Object: "list", Data: items}
}

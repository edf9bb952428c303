// Package chatreq contains HTTP request DTOs for conversation endpoints.
package chatreq

import (
	"github.com/go-playground/validator/v10"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/conversation"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/requests"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("chat_status", func(fl validator.FieldLevel) bool {
		return conversation.Status(fl.Field().String()).Valid()
	})
	return v
}

// CreateChatRequest opens a conversation explicitly.
type CreateChatRequest struct {
	PlatformID        string  `json:"platform_id" binding:"required"`
	PlatformAccountID string  `json:"platform_account_id" binding:"required"`
	CandidateUsername string  `json:"candidate_username" binding:"required"`
	CandidateName     string  `json:"candidate_name"`
	ExternalID        string  `json:"external_id"`
	JobPostingID      *string `json:"job_posting_id"`
	JobTypeID         *string `json:"job_type_id"`
	// FollowUpInterval in days; the service default applies when omitted.
	FollowUpInterval int `json:"follow_up_interval"`
}

// SendMessageRequest is an operator reply.
type SendMessageRequest struct {
	Content     string                       `json:"content"`
	Attachments []requests.AttachmentRequest `json:"attachments" binding:"omitempty,dive"`
}

// UpdateFollowUpIntervalRequest changes the follow-up cadence.
type UpdateFollowUpIntervalRequest struct {
	Days int `json:"days" binding:"required"`
}

// UpdateStatusRequest moves the conversation in the workflow.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" validate:"chat_status"`
}

// Validate rejects statuses outside the workflow.
func (r UpdateStatusRequest) Validate() error {
	return validate.Struct(r)
}

// UpdateNotesRequest replaces the operator notes.
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

// UpdateJobTypeRequest assigns or clears the job type.
type UpdateJobTypeRequest struct {
	JobTypeID *string `json:"job_type_id"`
}

package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/conversation"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/auth"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/handlers"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/requests"
	chatreq "github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/requests/chat"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/responses"
	chatres "github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/responses/chat"
	"github.com/Chibuzo15/crm-project-sub000/internal/utils/platformerrors"
)

const defaultMessageLimit = 100

// RegisterChatRoutes registers the conversation routes.
func RegisterChatRoutes(router gin.IRoutes, handler *handlers.ChatHandler) {
	router.GET("/chats", listChats(handler))
	router.POST("/chats", createChat(handler))
	router.GET("/chats/:id", getChat(handler))

	router.GET("/chats/:id/messages", listMessages(handler))
	router.POST("/chats/:id/messages", auth.RequireOperator(), sendMessage(handler))
	router.POST("/chats/:id/read", auth.RequireOperator(), markRead(handler))

	router.PATCH("/chats/:id/follow-up-interval", updateFollowUpInterval(handler))
	router.PATCH("/chats/:id/status", updateStatus(handler))
	router.PATCH("/chats/:id/notes", updateNotes(handler))
	router.PATCH("/chats/:id/job-type", updateJobType(handler))
}

// listChats godoc
// @Summary      List conversations
// @Description  Lists conversations by most recent message, with optional filters
// @Tags         Chats
// @Produce      json
// @Param        platform_id query string false "Platform ID"
// @Param        platform_account_id query string false "Platform account ID"
// @Param        job_type_id query string false "Job type ID"
// @Param        job_posting_id query string false "Job posting ID"
// @Param        status query []string false "Statuses, repeated or comma separated"
// @Param        search query string false "Candidate username or name"
// @Param        unread_only query bool false "Only chats with unread candidate messages"
// @Param        needs_follow_up query bool false "Only chats past their follow-up date"
// @Param        page query int false "Page, 1-based"
// @Param        page_size query int false "Page size"
// @Success      200 {object} chatres.ListChatsResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      500 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /chats [get]
func listChats(handler *handlers.ChatHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := conversation.Filter{
			PlatformID:        optionalQuery(c, "platform_id"),
			PlatformAccountID: optionalQuery(c, "platform_account_id"),
			JobTypeID:         optionalQuery(c, "job_type_id"),
			JobPostingID:      optionalQuery(c, "job_posting_id"),
			Search:            optionalQuery(c, "search"),
		}
		for _, raw := range listQuery(c, "status") {
			status := conversation.Status(raw)
			if !status.Valid() {
				responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid status: "+raw)
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}

		var ok bool
		if filter.UnreadOnly, ok = boolQuery(c, "unread_only"); !ok {
			return
		}
		needsFollowUp, ok := boolQuery(c, "needs_follow_up")
		if !ok {
			return
		}
		if needsFollowUp {
			now := handler.Now()
			filter.NeedsFollowUpAt = &now
		}

		page, ok := intQuery(c, "page", 1)
		if !ok {
			return
		}
		pageSize, ok := intQuery(c, "page_size", conversation.DefaultPageSize)
		if !ok {
			return
		}
		pagination := conversation.Pagination{Page: int(page), PageSize: int(pageSize)}
		pagination.Normalize()

		chats, total, err := handler.ListChats(c.Request.Context(), filter, pagination)
		if err != nil {
			responses.HandleError(c, err, "failed to list chats")
			return
		}

		c.JSON(http.StatusOK, chatres.NewListChatsResponse(chats, pagination, total))
	}
}

// createChat godoc
// @Summary      Create a conversation
// @Description  Opens a conversation with a candidate on a platform account and announces it to operators
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Param        request body chatreq.CreateChatRequest true "Conversation"
// @Success      201 {object} conversation.Chat
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Failure      409 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /chats [post]
func createChat(handler *handlers.ChatHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chatreq.CreateChatRequest
		if !bindJSON(c, &req) {
			return
		}

		chat, err := handler.CreateChat(c.Request.Context(), conversation.NewChatParams{
			PlatformID:        req.PlatformID,
			PlatformAccountID: req.PlatformAccountID,
			CandidateUsername: req.CandidateUsername,
			CandidateName:     req.CandidateName,
			ExternalID:        req.ExternalID,
			JobPostingID:      req.JobPostingID,
			JobTypeID:         req.JobTypeID,
			FollowUpInterval:  req.FollowUpInterval,
		})
		if err != nil {
			responses.HandleError(c, err, "failed to create chat")
			return
		}

		c.JSON(http.StatusCreated, chat)
	}
}

// getChat godoc
// @Summary      Get a conversation
// @Tags         Chats
// @Produce      json
// @Param        id path string true "Chat ID"
// @Success      200 {object} conversation.Chat
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /chats/{id} [get]
func getChat(handler *handlers.ChatHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		chat, err := handler.GetChat(c.Request.Context(), c.Param("id"))
		if err != nil {
			responses.HandleError(c, err, "failed to get chat")
			return
		}
		c.JSON(http.StatusOK, chat)
	}
}

// listMessages godoc
// @Summary      List messages
// @Description  Returns messages in sequence order after the given sequence cursor
// @Tags         Chats
// @Produce      json
// @Param        id path string true "Chat ID"
// @Param        after_sequence query int false "Return messages with a greater sequence"
// @Param        limit query int false "Maximum messages"
// @Success      200 {object} chatres.ListMessagesResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /chats/{id}/messages [get]
func listMessages(handler *handlers.ChatHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		after, ok := intQuery(c, "after_sequence", 0)
		if !ok {
			return
		}
		limit, ok := intQuery(c, "limit", defaultMessageLimit)
		if !ok {
			return
		}

		messages, err := handler.ListMessages(c.Request.Context(), c.Param("id"), after, int(limit))
		if err != nil {
			responses.HandleError(c, err, "failed to list messages")
			return
		}
		c.JSON(http.StatusOK, chatres.NewListMessagesResponse(messages))
	}
}

// sendMessage godoc
// @Summary      Send an operator message
// @Description  Appends an operator reply, resets the follow-up deadline, and records on-time activity
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Param        id path string true "Chat ID"
// @Param        request body chatreq.SendMessageRequest true "Message"
// @Success      201 {object} chatres.MessageResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      401 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Failure      409 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /chats/{id}/messages [post]
func sendMessage(handler *handlers.ChatHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chatreq.SendMessageRequest
		if !bindJSON(c, &req) {
			return
		}
		operator, _ := auth.OperatorFromContext(c)

		result, err := handler.SendMessage(c.Request.Context(), c.Param("id"), operator, req.Content, requests.ToAttachments(req.Attachments))
		if err != nil {
			responses.HandleError(c, err, "failed to send message")
			return
		}
		c.JSON(http.StatusCreated, chatres.NewMessageResponse(result))
	}
}

// markRead godoc
// @Summary      Mark a conversation read
// @Description  Marks every unread candidate message read and resets the unread count
// @Tags         Chats
// @Produce      json
// @Param        id path string true "Chat ID"
// @Success      200 {object} chatres.ReadResponse
// @Failure      401 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /chats/{id}/read [post]
func markRead(handler *handlers.ChatHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		operator, _ := auth.OperatorFromContext(c)
		result, err := handler.MarkRead(c.Request.Context(), c.Param("id"), operator)
		if err != nil {
			responses.HandleError(c, err, "failed to mark chat read")
			return
		}
		c.JSON(http.StatusOK, chatres.NewReadResponse(result))
	}
}

// updateFollowUpInterval godoc
// @Summary      Update the follow-up interval
// @Description  Sets the follow-up cadence in days and recomputes the deadline from the last message
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Param        id path string true "Chat ID"
// @Param        request body chatreq.UpdateFollowUpIntervalRequest true "Interval"
// @Success      200 {object} conversation.Chat
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /chats/{id}/follow-up-interval [patch]
func updateFollowUpInterval(handler *handlers.ChatHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chatreq.UpdateFollowUpIntervalRequest
		if !bindJSON(c, &req) {
			return
		}
		chat, err := handler.UpdateFollowUpInterval(c.Request.Context(), c.Param("id"), req.Days)
		if err != nil {
			responses.HandleError(c, err, "failed to update follow-up interval")
			return
		}
		c.JSON(http.StatusOK, chat)
	}
}

// updateStatus godoc
// @Summary      Update the conversation status
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Param        id path string true "Chat ID"
// @Param        request body chatreq.UpdateStatusRequest true "Status"
// @Success      200 {object} conversation.Chat
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /chats/{id}/status [patch]
func updateStatus(handler *handlers.ChatHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chatreq.UpdateStatusRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := req.Validate(); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid status: "+req.Status)
			return
		}
		chat, err := handler.UpdateStatus(c.Request.Context(), c.Param("id"), conversation.Status(req.Status))
		if err != nil {
			responses.HandleError(c, err, "failed to update status")
			return
		}
		c.JSON(http.StatusOK, chat)
	}
}

// updateNotes godoc
// @Summary      Update the operator notes
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Param        id path string true "Chat ID"
// @Param        request body chatreq.UpdateNotesRequest true "Notes"
// @Success      200 {object} conversation.Chat
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /chats/{id}/notes [patch]
func updateNotes(handler *handlers.ChatHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chatreq.UpdateNotesRequest
		if !bindJSON(c, &req) {
			return
		}
		chat, err := handler.UpdateNotes(c.Request.Context(), c.Param("id"), req.Notes)
		if err != nil {
			responses.HandleError(c, err, "failed to update notes")
			return
		}
		c.JSON(http.StatusOK, chat)
	}
}

// updateJobType godoc
// @Summary      Assign the job type
// @Description  Assigns a job type to the conversation, or clears it with a null id
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Param        id path string true "Chat ID"
// @Param        request body chatreq.UpdateJobTypeRequest true "Job type"
// @Success      200 {object} conversation.Chat
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /chats/{id}/job-type [patch]
func updateJobType(handler *handlers.ChatHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chatreq.UpdateJobTypeRequest
		if !bindJSON(c, &req) {
			return
		}
		chat, err := handler.UpdateJobType(c.Request.Context(), c.Param("id"), req.JobTypeID)
		if err != nil {
			responses.HandleError(c, err, "failed to update job type")
			return
		}
		c.JSON(http.StatusOK, chat)
	}
}

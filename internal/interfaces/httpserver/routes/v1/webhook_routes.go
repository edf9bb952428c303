package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/ingest"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/handlers"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/requests"
	webhookreq "github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/requests/webhook"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/responses"
	chatres "github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/responses/chat"
)

// RegisterWebhookRoutes registers the platform adapter webhooks.
func RegisterWebhookRoutes(router gin.IRoutes, handler *handlers.WebhookHandler) {
	router.POST("/candidate-messages", ingestCandidateMessage(handler))
}

// ingestCandidateMessage godoc
// @Summary      Ingest a candidate message
// @Description  Stores a candidate message relayed by a platform adapter. The conversation is created on first contact on the platform's active account.
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Param        X-Webhook-Secret header string true "Shared adapter secret"
// @Param        request body webhookreq.CandidateMessageRequest true "Message"
// @Success      201 {object} chatres.MessageResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      401 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Failure      409 {object} responses.ErrorResponse
// @Router       /webhooks/candidate-messages [post]
func ingestCandidateMessage(handler *handlers.WebhookHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req webhookreq.CandidateMessageRequest
		if !bindJSON(c, &req) {
			return
		}

		target := ingest.Target{
			ChatID:            req.ChatID,
			PlatformID:        req.PlatformID,
			CandidateUsername: req.CandidateUsername,
			CandidateName:     req.CandidateName,
			ExternalChatID:    req.ExternalChatID,
		}
		result, err := handler.IngestCandidateMessage(c.Request.Context(), target, req.Content, req.ExternalID, requests.ToAttachments(req.Attachments))
		if err != nil {
			responses.HandleError(c, err, "failed to ingest candidate message")
			return
		}

		status := http.StatusOK
		if result.ChatCreated {
			status = http.StatusCreated
		}
		c.JSON(status, chatres.NewMessageResponse(result))
	}
}

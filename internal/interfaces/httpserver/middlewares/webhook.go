package middlewares

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/Chibuzo15/crm-project-sub000/internal/utils/platformerrors"
)

// WebhookSecretHeader carries the shared secret of platform adapters.
const WebhookSecretHeader = "X-Webhook-Secret"

// WebhookSecret rejects requests whose X-Webhook-Secret does not match. An
// empty secret leaves the webhook open, which is only meant for development.
func WebhookSecret(secret string) gin.HandlerFunc {
	expected := []byte(secret)
	return func(c *gin.Context) {
		if len(expected) == 0 {
			c.Next()
			return
		}
		provided := []byte(c.GetHeader(WebhookSecretHeader))
		if subtle.ConstantTimeCompare(provided, expected) != 1 {
			platformerrors.WriteUnauthorized(c, "invalid webhook secret")
			c.Abort()
			return
		}
		c.Next()
	}
}

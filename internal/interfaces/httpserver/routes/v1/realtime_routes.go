package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/auth"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/handlers"
)

// RegisterRealtimeRoutes registers the operator socket and its schema.
func RegisterRealtimeRoutes(router gin.IRoutes, handler *handlers.RealtimeHandler) {
	router.GET("/realtime/ws", auth.RequireOperator(), serveSocket(handler))
	router.GET("/realtime/schema", realtimeSchema(handler))
}

// serveSocket godoc
// @Summary      Operator realtime socket
// @Description  Upgrades to a WebSocket. Browsers pass the token as access_token. Sessions start in the operators room and the caller's personal room; send join to follow a chat.
// @Tags         Realtime
// @Param        access_token query string false "Bearer token for browser clients"
// @Success      101 "Switching Protocols"
// @Failure      401 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /realtime/ws [get]
func serveSocket(handler *handlers.RealtimeHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		operator, _ := auth.OperatorFromContext(c)
		if err := handler.Serve(c.Writer, c.Request, operator); err != nil {
			// The upgrader has already written the HTTP error.
			log.Debug().Err(err).Str("operator_id", operator.ID).Msg("websocket upgrade failed")
		}
		c.Abort()
	}
}

// realtimeSchema godoc
// @Summary      Realtime protocol schema
// @Description  JSON Schema of the client command and server event envelopes
// @Tags         Realtime
// @Produce      json
// @Success      200 {object} realtime.ProtocolSchema
// @Security     BearerAuth
// @Router       /realtime/schema [get]
func realtimeSchema(handler *handlers.RealtimeHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, handler.Schema())
	}
}

package responses

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Chibuzo15/crm-project-sub000/internal/utils/platformerrors"
)

// HandleError writes err using its platform error type. Unclassified errors
// become 500s and are logged with message as context.
func HandleError(c *gin.Context, err error, message string) {
	logger := log.With().
		Str("path", c.Request.URL.Path).
		Str("context", message).
		Logger()
	platformerrors.WriteError(c, err, logger)
}

// HandleNewError writes a route-level error such as a bad query parameter.
func HandleNewError(c *gin.Context, errorType platformerrors.ErrorType, message string) {
	platformerrors.WriteTyped(c, errorType, message)
}

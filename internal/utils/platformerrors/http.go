package platformerrors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HTTPErrorResponse represents the standard error response format.
type HTTPErrorResponse struct {
	Error *HTTPErrorDetail `json:"error"`
}

// HTTPErrorDetail contains error details for HTTP responses.
type HTTPErrorDetail struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteHTTPError writes a PlatformError as an HTTP response.
func WriteHTTPError(c *gin.Context, err *PlatformError, log zerolog.Logger) {
	if err == nil {
		WriteInternalError(c, "unknown error")
		return
	}

	status := ErrorTypeToHTTPStatus(err.Type)
	if status >= http.StatusInternalServerError {
		LogError(log, err)
	} else {
		log.Debug().Str("error_type", string(err.Type)).Str("error_code", err.UUID).Msg(err.Message)
	}

	c.JSON(status, HTTPErrorResponse{
		Error: &HTTPErrorDetail{
			Message:   err.Message,
			Type:      ErrorTypeString(err.Type),
			Code:      err.UUID,
			RequestID: err.RequestID,
		},
	})
}

// WriteError writes a generic error as an HTTP response.
// Errors that are not PlatformErrors are treated as internal.
func WriteError(c *gin.Context, err error, log zerolog.Logger) {
	if err == nil {
		WriteInternalError(c, "unknown error")
		return
	}

	if platformErr := GetPlatformError(err); platformErr != nil {
		WriteHTTPError(c, platformErr, log)
		return
	}

	log.Error().Err(err).Msg("unclassified error")
	WriteInternalError(c, err.Error())
}

// WriteTyped writes a route-level error of the given type without logging.
func WriteTyped(c *gin.Context, errorType ErrorType, message string) {
	c.JSON(ErrorTypeToHTTPStatus(errorType), HTTPErrorResponse{
		Error: &HTTPErrorDetail{
			Message: message,
			Type:    ErrorTypeString(errorType),
		},
	})
}

// WriteValidationError writes a 400 Bad Request response.
func WriteValidationError(c *gin.Context, message string) {
	WriteTyped(c, ErrorTypeValidation, message)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(c *gin.Context, message string) {
	WriteTyped(c, ErrorTypeUnauthorized, message)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(c *gin.Context, message string) {
	WriteTyped(c, ErrorTypeInternal, message)
}

// ErrorTypeString converts an ErrorType to a snake_case string for API responses.
func ErrorTypeString(t ErrorType) string {
	switch t {
	case ErrorTypeNotFound:
		return "not_found_error"
	case ErrorTypeValidation:
		return "validation_error"
	case ErrorTypeConflict:
		return "conflict_error"
	case ErrorTypeNoActiveAccount:
		return "no_active_account_error"
	case ErrorTypeUnauthorized:
		return "unauthorized_error"
	case ErrorTypeForbidden:
		return "forbidden_error"
	case ErrorTypeExternal:
		return "external_error"
	case ErrorTypeDatabaseError:
		return "database_error"
	case ErrorTypeInternal:
		fallthrough
	default:
		return "internal_error"
	}
}

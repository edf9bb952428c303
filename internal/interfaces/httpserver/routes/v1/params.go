package v1

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/responses"
	"github.com/Chibuzo15/crm-project-sub000/internal/utils/platformerrors"
)

// optionalQuery returns a pointer to a trimmed query value, nil when absent.
func optionalQuery(c *gin.Context, key string) *string {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil
	}
	return &value
}

// intQuery parses an integer query parameter. It writes a validation error
// and returns false when the value is malformed.
func intQuery(c *gin.Context, key string, fallback int64) (int64, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid "+key)
		return 0, false
	}
	return value, true
}

func boolQuery(c *gin.Context, key string) (bool, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return false, true
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid "+key)
		return false, false
	}
	return value, true
}

// listQuery collects repeated and comma separated values.
func listQuery(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// dateQuery parses a YYYY-MM-DD query parameter as a UTC day.
func dateQuery(c *gin.Context, key string, fallback time.Time) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, true
	}
	day, err := time.ParseInLocation(time.DateOnly, raw, time.UTC)
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid "+key+", expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return day, true
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body: "+err.Error())
		return false
	}
	return true
}

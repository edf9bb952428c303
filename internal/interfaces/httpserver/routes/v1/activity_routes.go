package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/activity"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/auth"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/export"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/handlers"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/responses"
	activityres "github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/responses/activity"
	"github.com/Chibuzo15/crm-project-sub000/internal/utils/platformerrors"
)

const (
	defaultActivityDays = 30
	xlsxContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// RegisterActivityRoutes registers the activity analytics routes.
func RegisterActivityRoutes(router gin.IRoutes, handler *handlers.ActivityHandler) {
	router.GET("/activity", listActivity(handler))
	router.GET("/activity/export.xlsx", exportActivity(handler))
}

// listActivity godoc
// @Summary      Operator activity
// @Description  Daily on-time and off-time reply counts with on-time percentage and average per active day. The range defaults to the last 30 days.
// @Tags         Activity
// @Produce      json
// @Param        operator_id query string false "Operator ID, or me for the caller"
// @Param        from query string false "First day, YYYY-MM-DD"
// @Param        to query string false "Last day, YYYY-MM-DD"
// @Success      200 {object} activityres.ActivityResponse
// @Failure      400 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /activity [get]
func listActivity(handler *handlers.ActivityHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := activityFilter(c)
		if !ok {
			return
		}
		summary, err := handler.ListActivity(c.Request.Context(), filter)
		if err != nil {
			responses.HandleError(c, err, "failed to list activity")
			return
		}
		c.JSON(http.StatusOK, activityres.NewActivityResponse(filter, summary))
	}
}

// exportActivity godoc
// @Summary      Export operator activity
// @Description  Streams the activity rows and totals as an XLSX spreadsheet
// @Tags         Activity
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        operator_id query string false "Operator ID, or me for the caller"
// @Param        from query string false "First day, YYYY-MM-DD"
// @Param        to query string false "Last day, YYYY-MM-DD"
// @Success      200 {file} file
// @Failure      400 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /activity/export.xlsx [get]
func exportActivity(handler *handlers.ActivityHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := activityFilter(c)
		if !ok {
			return
		}
		write, err := handler.ExportActivity(c.Request.Context(), filter)
		if err != nil {
			responses.HandleError(c, err, "failed to export activity")
			return
		}

		c.Header("Content-Type", xlsxContentType)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.ActivityFilename(filter)))
		c.Status(http.StatusOK)
		if err := write(c.Writer); err != nil {
			_ = c.Error(err)
		}
	}
}

func activityFilter(c *gin.Context) (activity.Filter, bool) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	to, ok := dateQuery(c, "to", today)
	if !ok {
		return activity.Filter{}, false
	}
	from, ok := dateQuery(c, "from", to.AddDate(0, 0, -(defaultActivityDays-1)))
	if !ok {
		return activity.Filter{}, false
	}

	filter := activity.Filter{From: from, To: to}
	if operatorID := optionalQuery(c, "operator_id"); operatorID != nil {
		if *operatorID == "me" {
			operator, ok := auth.OperatorFromContext(c)
			if !ok {
				responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "operator identity required")
				return activity.Filter{}, false
			}
			operatorID = &operator.ID
		}
		filter.OperatorID = operatorID
	}
	return filter, true
}

package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/handlers"
	directoryreq "github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/requests/directory"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/responses"
	directoryres "github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/responses/directory"
)

// RegisterDirectoryRoutes registers platform, account, and job catalog routes.
func RegisterDirectoryRoutes(router gin.IRoutes, handler *handlers.DirectoryHandler) {
	router.GET("/platforms", listPlatforms(handler))
	router.POST("/platforms", createPlatform(handler))
	router.GET("/platforms/:id/accounts", listAccounts(handler))
	router.POST("/platforms/:id/accounts", createAccount(handler))
	router.PATCH("/accounts/:id/active", setAccountActive(handler))

	router.GET("/job-types", listJobTypes(handler))
	router.POST("/job-types", createJobType(handler))
	router.GET("/job-postings", listJobPostings(handler))
	router.POST("/job-postings", createJobPosting(handler))
}

// listPlatforms godoc
// @Summary      List platforms
// @Tags         Directory
// @Produce      json
// @Success      200 {object} directoryres.PlatformList
// @Security     BearerAuth
// @Router       /platforms [get]
func listPlatforms(handler *handlers.DirectoryHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		platforms, err := handler.ListPlatforms(c.Request.Context())
		if err != nil {
			responses.HandleError(c, err, "failed to list platforms")
			return
		}
		c.JSON(http.StatusOK, directoryres.NewList(platforms))
	}
}

// createPlatform godoc
// @Summary      Create a platform
// @Tags         Directory
// @Accept       json
// @Produce      json
// @Param        request body directoryreq.CreatePlatformRequest true "Platform"
// @Success      201 {object} directory.Platform
// @Failure      400 {object} responses.ErrorResponse
// @Failure      409 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /platforms [post]
func createPlatform(handler *handlers.DirectoryHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req directoryreq.CreatePlatformRequest
		if !bindJSON(c, &req) {
			return
		}
		platform, err := handler.CreatePlatform(c.Request.Context(), req.Name, req.Slug)
		if err != nil {
			responses.HandleError(c, err, "failed to create platform")
			return
		}
		c.JSON(http.StatusCreated, platform)
	}
}

// listAccounts godoc
// @Summary      List platform accounts
// @Tags         Directory
// @Produce      json
// @Param        id path string true "Platform ID"
// @Success      200 {object} directoryres.AccountList
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /platforms/{id}/accounts [get]
func listAccounts(handler *handlers.DirectoryHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		accounts, err := handler.ListAccounts(c.Request.Context(), c.Param("id"))
		if err != nil {
			responses.HandleError(c, err, "failed to list accounts")
			return
		}
		c.JSON(http.StatusOK, directoryres.NewList(accounts))
	}
}

// createAccount godoc
// @Summary      Create a platform account
// @Tags         Directory
// @Accept       json
// @Produce      json
// @Param        id path string true "Platform ID"
// @Param        request body directoryreq.CreateAccountRequest true "Account"
// @Success      201 {object} directory.PlatformAccount
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /platforms/{id}/accounts [post]
func createAccount(handler *handlers.DirectoryHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req directoryreq.CreateAccountRequest
		if !bindJSON(c, &req) {
			return
		}
		active := true
		if req.IsActive != nil {
			active = *req.IsActive
		}
		account, err := handler.CreateAccount(c.Request.Context(), c.Param("id"), req.Name, req.Username, active)
		if err != nil {
			responses.HandleError(c, err, "failed to create account")
			return
		}
		c.JSON(http.StatusCreated, account)
	}
}

// setAccountActive godoc
// @Summary      Toggle a platform account
// @Description  Inactive accounts no longer receive conversations created on first contact
// @Tags         Directory
// @Accept       json
// @Produce      json
// @Param        id path string true "Account ID"
// @Param        request body directoryreq.SetAccountActiveRequest true "State"
// @Success      200 {object} directory.PlatformAccount
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /accounts/{id}/active [patch]
func setAccountActive(handler *handlers.DirectoryHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req directoryreq.SetAccountActiveRequest
		if !bindJSON(c, &req) {
			return
		}
		account, err := handler.SetAccountActive(c.Request.Context(), c.Param("id"), *req.IsActive)
		if err != nil {
			responses.HandleError(c, err, "failed to update account")
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

// listJobTypes godoc
// @Summary      List job types
// @Tags         Directory
// @Produce      json
// @Success      200 {object} directoryres.JobTypeList
// @Security     BearerAuth
// @Router       /job-types [get]
func listJobTypes(handler *handlers.DirectoryHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobTypes, err := handler.ListJobTypes(c.Request.Context())
		if err != nil {
			responses.HandleError(c, err, "failed to list job types")
			return
		}
		c.JSON(http.StatusOK, directoryres.NewList(jobTypes))
	}
}

// createJobType godoc
// @Summary      Create a job type
// @Tags         Directory
// @Accept       json
// @Produce      json
// @Param        request body directoryreq.CreateJobTypeRequest true "Job type"
// @Success      201 {object} directory.JobType
// @Failure      400 {object} responses.ErrorResponse
// @Failure      409 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /job-types [post]
func createJobType(handler *handlers.DirectoryHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req directoryreq.CreateJobTypeRequest
		if !bindJSON(c, &req) {
			return
		}
		jobType, err := handler.CreateJobType(c.Request.Context(), req.Name)
		if err != nil {
			responses.HandleError(c, err, "failed to create job type")
			return
		}
		c.JSON(http.StatusCreated, jobType)
	}
}

// listJobPostings godoc
// @Summary      List job postings
// @Tags         Directory
// @Produce      json
// @Param        job_type_id query string false "Job type ID"
// @Success      200 {object} directoryres.JobPostingList
// @Failure      400 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /job-postings [get]
func listJobPostings(handler *handlers.DirectoryHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		postings, err := handler.ListJobPostings(c.Request.Context(), c.Query("job_type_id"))
		if err != nil {
			responses.HandleError(c, err, "failed to list job postings")
			return
		}
		c.JSON(http.StatusOK, directoryres.NewList(postings))
	}
}

// createJobPosting godoc
// @Summary      Create a job posting
// @Tags         Directory
// @Accept       json
// @Produce      json
// @Param        request body directoryreq.CreateJobPostingRequest true "Posting"
// @Success      201 {object} directory.JobPosting
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /job-postings [post]
func createJobPosting(handler *handlers.DirectoryHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req directoryreq.CreateJobPostingRequest
		if !bindJSON(c, &req) {
			return
		}
		posting, err := handler.CreateJobPosting(c.Request.Context(), req.JobTypeID, req.PlatformID, req.Title, req.URL)
		if err != nil {
			responses.HandleError(c, err, "failed to create job posting")
			return
		}
		c.JSON(http.StatusCreated, posting)
	}
}

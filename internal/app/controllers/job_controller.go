package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/app/models/dto"
	"github.com/yigit/printq/internal/app/services"
	"github.com/yigit/printq/internal/middleware"
	"github.com/yigit/printq/internal/pkg/helpers"
)

// JobController handles print job endpoints for students and administrators
type JobController struct {
	jobService     services.JobService
	maxUploadBytes int64
	logger         zerolog.Logger
}

// NewJobController creates a new JobController
func NewJobController(jobService services.JobService, maxUploadBytes int64, logger zerolog.Logger) *JobController {
	return &JobController{jobService: jobService, maxUploadBytes: maxUploadBytes, logger: logger}
}

// parseIDParam reads a UUID path parameter, answering 400 when it is malformed
func parseIDParam(ctx *gin.Context, name string) (string, bool) {
	id := ctx.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).
			WithField(name).
			WithDetails(fmt.Sprintf("%s must be a valid UUID", name))
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return "", false
	}
	return id, true
}

// bindOptionalJSON binds a JSON body when one was sent
func bindOptionalJSON(ctx *gin.Context, obj interface{}) bool {
	if err := ctx.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}

// SubmitJob uploads a document and queues it for approval
// @Summary Submit a print job
// @Description Uploads a document, debits its cost from the wallet and queues the job as pending
// @Tags jobs
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Document (.pdf, .docx, .doc, .ppt, .pptx)"
// @Param pages formData int true "Number of pages" minimum(1)
// @Param copies formData int false "Number of copies" default(1)
// @Param color formData bool false "Print in color"
// @Param duplex formData bool false "Print double-sided"
// @Param paperSize formData string false "Paper size" Enums(A4, A3) default(A4)
// @Param binding formData bool false "Bind the copies"
// @Param scheduledTime formData string false "Requested print time (RFC3339)"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitJobResponse} "Job submitted"
// @Failure 400 {object} dto.ErrorResponse "Invalid options, unsupported file or insufficient balance"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Students only"
// @Failure 413 {object} dto.ErrorResponse "File too large"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /jobs [post]
func (c *JobController) SubmitJob(ctx *gin.Context) {
	principal, ok := middleware.RequirePrincipal(ctx)
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "No file uploaded").WithField("file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	if c.maxUploadBytes > 0 && fileHeader.Size > c.maxUploadBytes {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "File too large").
			WithField("file").
			WithDetails(map[string]interface{}{"maxBytes": c.maxUploadBytes})
		ctx.JSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(errorDetail))
		return
	}

	var req dto.SubmitJobRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	scheduled, err := helpers.ParseOptionalTime("scheduledTime", req.ScheduledTime)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to open uploaded file")
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer file.Close()

	res, err := c.jobService.Submit(ctx.Request.Context(), principal.ID, services.Upload{
		FileName:      fileHeader.Filename,
		Content:       file,
		Options:       req.Options(),
		ScheduledTime: scheduled,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.SubmitJobResponse{
		Job:     res.Job,
		Balance: res.Balance,
	}, "Print job submitted successfully"))
}

// ListMyJobs lists the caller's jobs
// @Summary List my print jobs
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(pending, approved, completed, rejected)
// @Success 200 {object} dto.APIResponse{data=[]models.Job} "Jobs, newest first"
// @Failure 400 {object} dto.ErrorResponse "Unknown status"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Router /jobs [get]
func (c *JobController) ListMyJobs(ctx *gin.Context) {
	principal, ok := middleware.RequirePrincipal(ctx)
	if !ok {
		return
	}

	jobs, err := c.jobService.ListMine(ctx.Request.Context(), principal.ID, models.JobStatus(ctx.Query("status")))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(jobs, ""))
}

// GetHistory returns the caller's print history with totals
// @Summary Get print history
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.JobHistoryResponse} "History with summary"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Router /jobs/history [get]
func (c *JobController) GetHistory(ctx *gin.Context) {
	principal, ok := middleware.RequirePrincipal(ctx)
	if !ok {
		return
	}

	history, err := c.jobService.History(ctx.Request.Context(), principal.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(history, ""))
}

// GetJob returns one job
// @Summary Get a print job
// @Description Students can only read their own jobs
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=models.Job} "Job"
// @Failure 400 {object} dto.ErrorResponse "Invalid job ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /jobs/{id} [get]
func (c *JobController) GetJob(ctx *gin.Context) {
	principal, ok := middleware.RequirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	job, err := c.jobService.Get(ctx.Request.Context(), principal, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(job, ""))
}

// ListAllJobs lists jobs for administrators
// @Summary List all print jobs
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(pending, approved, completed, rejected)
// @Param printerId query string false "Filter by printer" Format(uuid)
// @Param limit query int false "Maximum number of jobs (max 100)"
// @Success 200 {object} dto.APIResponse{data=[]models.Job} "Jobs, newest first"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Router /admin/jobs [get]
func (c *JobController) ListAllJobs(ctx *gin.Context) {
	limit, err := helpers.ParseLimit(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	jobs, err := c.jobService.AdminList(ctx.Request.Context(), models.JobFilter{
		Status:    models.JobStatus(ctx.Query("status")),
		PrinterID: ctx.Query("printerId"),
		Limit:     limit,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(jobs, ""))
}

// ApproveJob routes a pending job to a printer
// @Summary Approve a print job
// @Description Without a printer id the first online printer is used
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID" Format(uuid)
// @Param request body dto.ApproveJobRequest false "Printer to route the job to"
// @Success 200 {object} dto.APIResponse{data=models.Job} "Job approved"
// @Failure 400 {object} dto.ErrorResponse "Job not pending or printer unavailable"
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Failure 404 {object} dto.ErrorResponse "Job or printer not found"
// @Router /admin/jobs/{id}/approve [post]
func (c *JobController) ApproveJob(ctx *gin.Context) {
	principal, ok := middleware.RequirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ApproveJobRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}

	job, err := c.jobService.Approve(ctx.Request.Context(), principal.ID, id, req.PrinterID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(job, "Job approved"))
}

// BulkApproveJobs approves several jobs onto one printer
// @Summary Bulk approve print jobs
// @Description The printer is resolved once; every job succeeds or fails on its own
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkApproveRequest true "Jobs and optional printer"
// @Success 200 {object} dto.APIResponse{data=dto.BulkApproveResponse} "Per-job outcome"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or printer unavailable"
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Router /admin/jobs/bulk-approve [post]
func (c *JobController) BulkApproveJobs(ctx *gin.Context) {
	principal, ok := middleware.RequirePrincipal(ctx)
	if !ok {
		return
	}

	var req dto.BulkApproveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	res, err := c.jobService.BulkApprove(ctx.Request.Context(), principal.ID, req.JobIDs, req.PrinterID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(res,
		fmt.Sprintf("%d approved, %d failed", len(res.Approved), len(res.Failed))))
}

// RejectJob rejects a job and refunds its cost
// @Summary Reject a print job
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID" Format(uuid)
// @Param request body dto.RejectJobRequest false "Reason shown to the student"
// @Success 200 {object} dto.APIResponse{data=models.Job} "Job rejected and refunded"
// @Failure 400 {object} dto.ErrorResponse "Job already completed or rejected"
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /admin/jobs/{id}/reject [post]
func (c *JobController) RejectJob(ctx *gin.Context) {
	principal, ok := middleware.RequirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.RejectJobRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}

	job, err := c.jobService.Reject(ctx.Request.Context(), principal.ID, id, req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(job, "Job rejected and refunded"))
}

// CompleteJob marks an approved job printed
// @Summary Complete a print job
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=models.Job} "Job completed"
// @Failure 400 {object} dto.ErrorResponse "Job not approved"
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /admin/jobs/{id}/complete [post]
func (c *JobController) CompleteJob(ctx *gin.Context) {
	principal, ok := middleware.RequirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	job, err := c.jobService.Complete(ctx.Request.Context(), principal.ID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(job, "Job completed"))
}

// DeleteJob removes a finished job
// @Summary Delete a print job
// @Description Only completed or rejected jobs can be deleted
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Job deleted"
// @Failure 400 {object} dto.ErrorResponse "Job still active"
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /admin/jobs/{id} [delete]
func (c *JobController) DeleteJob(ctx *gin.Context) {
	principal, ok := middleware.RequirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.jobService.Delete(ctx.Request.Context(), principal.ID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Job deleted"}, ""))
}

package dto

import (
	"github.com/shopspring/decimal"
	"github.com/yigit/printq/internal/app/models"
)

// SubmitJobRequest carries the multipart form fields that accompany an upload
type SubmitJobRequest struct {
	Pages     int    `form:"pages" binding:"required,min=1" example:"10"`
	Copies    int    `form:"copies" binding:"omitempty,min=1" example:"1"`
	Color     bool   `form:"color" example:"false"`
	Duplex    bool   `form:"duplex" example:"true"`
	PaperSize string `form:"paperSize" binding:"omitempty,oneof=A4 A3" example:"A4"`
	Binding   bool   `form:"binding" example:"false"`
	// ScheduledTime is RFC3339
	ScheduledTime string `form:"scheduledTime" binding:"omitempty" example:"2025-05-01T09:00:00Z"`
}

// Options converts the form into print options, applying defaults for omitted fields
func (r SubmitJobRequest) Options() models.PrintOptions {
	opts := models.PrintOptions{
		Pages:     r.Pages,
		Copies:    r.Copies,
		Color:     r.Color,
		Duplex:    r.Duplex,
		PaperSize: models.PaperSize(r.PaperSize),
		Binding:   r.Binding,
	}
	if opts.Copies == 0 {
		opts.Copies = 1
	}
	if opts.PaperSize == "" {
		opts.PaperSize = models.PaperA4
	}
	return opts
}

// SubmitJobResponse returns the created job with the caller's remaining balance
type SubmitJobResponse struct {
	Job     *models.Job     `json:"job"`
	Balance decimal.Decimal `json:"balance" swaggertype:"string" example:"14.50"`
}

// ApproveJobRequest optionally pins the job to a printer
type ApproveJobRequest struct {
	PrinterID *string `json:"printerId,omitempty" binding:"omitempty,uuid"`
}

// BulkApproveRequest approves several jobs onto one printer
type BulkApproveRequest struct {
	JobIDs    []string `json:"jobIds" binding:"required,min=1,max=100,dive,uuid"`
	PrinterID *string  `json:"printerId,omitempty" binding:"omitempty,uuid"`
}

// BulkFailure explains why one job of a batch was not approved
type BulkFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason" example:"Job is already completed"`
}

// BulkApproveResponse splits a batch into approved and failed jobs
type BulkApproveResponse struct {
	Approved []string      `json:"approved"`
	Failed   []BulkFailure `json:"failed"`
}

// RejectJobRequest carries an optional reason shown to the student
type RejectJobRequest struct {
	Reason string `json:"reason,omitempty" binding:"max=500" example:"File is unreadable"`
}

// JobHistorySummary aggregates a student's print history
type JobHistorySummary struct {
	TotalJobs  int             `json:"totalJobs" example:"4"`
	TotalPages int             `json:"totalPages" example:"120"`
	TotalCost  decimal.Decimal `json:"totalCost" swaggertype:"string" example:"63.40"`
	TreesSaved decimal.Decimal `json:"treesSaved" swaggertype:"string" example:"0.24"`
}

// JobHistoryResponse lists jobs with their summary
type JobHistoryResponse struct {
	Jobs    []*models.Job     `json:"jobs"`
	Summary JobHistorySummary `json:"summary"`
}

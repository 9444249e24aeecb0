package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JobStatus is the lifecycle state of a print job
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobApproved  JobStatus = "approved"
	JobCompleted JobStatus = "completed"
	JobRejected  JobStatus = "rejected"
)

// jobTransitions lists the legal targets for every source state
var jobTransitions = map[JobStatus][]JobStatus{
	JobPending:  {JobApproved, JobRejected},
	JobApproved: {JobCompleted, JobRejected},
}

// Valid reports whether s is a known status
func (s JobStatus) Valid() bool {
	switch s {
	case JobPending, JobApproved, JobCompleted, JobRejected:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobRejected
}

// CanTransitionTo reports whether s -> next is a legal move
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, t := range jobTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// SourcesFor returns the states from which target can be reached.
func SourcesFor(target JobStatus) []JobStatus {
	var out []JobStatus
	for _, from := range []JobStatus{JobPending, JobApproved, JobCompleted, JobRejected} {
		if from.CanTransitionTo(target) {
			out = append(out, from)
		}
	}
	return out
}

// PaperSize is the sheet format requested for a job
type PaperSize string

const (
	PaperA4 PaperSize = "A4"
	PaperA3 PaperSize = "A3"
)

// Valid reports whether p is a supported paper size
func (p PaperSize) Valid() bool {
	return p == PaperA4 || p == PaperA3
}

// PrintOptions are the attributes the cost is computed from
type PrintOptions struct {
	Pages     int       `json:"pages" example:"10"`
	Color     bool      `json:"color" example:"false"`
	Duplex    bool      `json:"duplex" example:"true"`
	PaperSize PaperSize `json:"paperSize" example:"A4" enums:"A4,A3"`
	Binding   bool      `json:"binding" example:"false"`
	Copies    int       `json:"copies" example:"1"`
}

// Job is a student's print request ('jobs' table)
type Job struct {
	ID        string `json:"id" db:"id"`
	StudentID string `json:"studentId" db:"student_id"`

	// Stored document handle and the name the student uploaded it with
	FileName string `json:"fileName" db:"file_name" example:"thesis.pdf"`
	FilePath string `json:"-" db:"file_path"`

	PrintOptions

	Cost      decimal.Decimal `json:"cost" db:"cost" swaggertype:"string" example:"10.50"`
	Status    JobStatus       `json:"status" db:"status" example:"pending" enums:"pending,approved,completed,rejected"`
	PickupPIN string          `json:"pickupPin" db:"pickup_pin" example:"482913"`

	// Printer assignment, present while approved or completed
	PrinterID       *string `json:"printerId,omitempty" db:"printer_id"`
	PrinterName     *string `json:"printerName,omitempty" db:"printer_name"`
	PrinterLocation *string `json:"printerLocation,omitempty" db:"printer_location"`

	ScheduledTime *time.Time `json:"scheduledTime,omitempty" db:"scheduled_time"`

	ApprovedBy      *string    `json:"approvedBy,omitempty" db:"approved_by"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty" db:"approved_at"`
	RejectedBy      *string    `json:"rejectedBy,omitempty" db:"rejected_by"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty" db:"rejected_at"`
	RejectionReason *string    `json:"rejectionReason,omitempty" db:"rejection_reason"`
	CompletedAt     *time.Time `json:"completedAt,omitempty" db:"completed_at"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// EcoPoints returns the loyalty award granted when the job completes
func (j *Job) EcoPoints() int {
	if j.Duplex {
		return j.Pages * 2
	}
	return 0
}

// JobTransition describes a guarded status change. The update applies only when
// the stored status is one of From.
type JobTransition struct {
	From  []JobStatus
	To    JobStatus
	At    time.Time
	Actor string

	// Printer is recorded on approval and cleared on rejection
	Printer *Printer
	Reason  string
}

// JobFilter narrows job listings; zero values are ignored.
type JobFilter struct {
	StudentID string
	Status    JobStatus
	PrinterID string
	Limit     uint64
}

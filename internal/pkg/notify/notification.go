// Package notify delivers best-effort student notifications through a bounded queue.
package notify

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Kind names a notification template
type Kind string

const (
	KindAccountCreated Kind = "account_created"
	KindJobSubmitted   Kind = "job_submitted"
	KindJobApproved    Kind = "job_approved"
	KindJobCompleted   Kind = "job_completed"
	KindJobRejected    Kind = "job_rejected"
	KindLowBalance     Kind = "low_balance"
)

// Notification is one of the kinds declared in this package
type Notification interface {
	Kind() Kind
	Subject() string
	// Fields is the flat payload rendered into the template
	Fields() map[string]string
	notification()
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// AccountCreated welcomes a newly registered student
type AccountCreated struct {
	Username string
}

func (AccountCreated) Kind() Kind      { return KindAccountCreated }
func (AccountCreated) Subject() string { return "Welcome to PrintQ!" }
func (AccountCreated) notification()   {}

func (n AccountCreated) Fields() map[string]string {
	return map[string]string{"username": n.Username}
}

// JobSubmitted confirms a paid submission
type JobSubmitted struct {
	JobID     string
	FileName  string
	Pages     int
	Copies    int
	Cost      decimal.Decimal
	PickupPIN string
}

func (JobSubmitted) Kind() Kind      { return KindJobSubmitted }
func (JobSubmitted) Subject() string { return "Print Job Submitted" }
func (JobSubmitted) notification()   {}

func (n JobSubmitted) Fields() map[string]string {
	return map[string]string{
		"job_id":     n.JobID,
		"file_name":  n.FileName,
		"pages":      strconv.Itoa(n.Pages),
		"copies":     strconv.Itoa(n.Copies),
		"cost":       money(n.Cost),
		"pickup_pin": n.PickupPIN,
	}
}

// JobApproved tells the student where the job will be printed
type JobApproved struct {
	JobID           string
	FileName        string
	PrinterName     string
	PrinterLocation string
	PickupPIN       string
}

func (JobApproved) Kind() Kind      { return KindJobApproved }
func (JobApproved) Subject() string { return "Job Approved - Ready to Print" }
func (JobApproved) notification()   {}

func (n JobApproved) Fields() map[string]string {
	return map[string]string{
		"job_id":           n.JobID,
		"file_name":        n.FileName,
		"printer_name":     n.PrinterName,
		"printer_location": n.PrinterLocation,
		"pickup_pin":       n.PickupPIN,
	}
}

// JobCompleted tells the student the output is ready for pickup
type JobCompleted struct {
	JobID           string
	FileName        string
	PrinterLocation string
	PickupPIN       string
	EcoPoints       int
}

func (JobCompleted) Kind() Kind      { return KindJobCompleted }
func (JobCompleted) Subject() string { return "Print Job Completed - Ready for Pickup!" }
func (JobCompleted) notification()   {}

func (n JobCompleted) Fields() map[string]string {
	return map[string]string{
		"job_id":           n.JobID,
		"file_name":        n.FileName,
		"printer_location": n.PrinterLocation,
		"pickup_pin":       n.PickupPIN,
		"eco_points":       strconv.Itoa(n.EcoPoints),
	}
}

// JobRejected reports a rejection and the refund issued
type JobRejected struct {
	JobID    string
	FileName string
	Reason   string
	Refund   decimal.Decimal
}

func (JobRejected) Kind() Kind      { return KindJobRejected }
func (JobRejected) Subject() string { return "Print Job Rejected" }
func (JobRejected) notification()   {}

func (n JobRejected) Fields() map[string]string {
	return map[string]string{
		"job_id":    n.JobID,
		"file_name": n.FileName,
		"reason":    n.Reason,
		"refund":    money(n.Refund),
	}
}

// LowBalance warns a student their wallet is running out
type LowBalance struct {
	Username  string
	Balance   decimal.Decimal
	Threshold decimal.Decimal
}

func (LowBalance) Kind() Kind      { return KindLowBalance }
func (LowBalance) Subject() string { return "Low Wallet Balance Alert" }
func (LowBalance) notification()   {}

func (n LowBalance) Fields() map[string]string {
	return map[string]string{
		"username":  n.Username,
		"balance":   money(n.Balance),
		"threshold": money(n.Threshold),
	}
}

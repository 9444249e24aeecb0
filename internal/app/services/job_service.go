package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	authz "github.com/yigit/printq/internal/app/auth"
	"github.com/yigit/printq/internal/app/ledger"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/app/models/dto"
	"github.com/yigit/printq/internal/app/pricing"
	"github.com/yigit/printq/internal/app/repositories"
	"github.com/yigit/printq/internal/pkg/apperrors"
	"github.com/yigit/printq/internal/pkg/filestorage"
	"github.com/yigit/printq/internal/pkg/notify"
	"github.com/yigit/printq/internal/pkg/websocket"
)

// AllowedExtensions lists the document formats accepted for printing
var AllowedExtensions = []string{".pdf", ".docx", ".doc", ".ppt", ".pptx"}

// DefaultRejectionReason is recorded when an admin rejects without a reason
const DefaultRejectionReason = "Rejected by admin"

// PagesPerTree converts printed pages into trees for the history summary
const PagesPerTree = 500

// Upload is a document submitted for printing
type Upload struct {
	FileName      string
	Content       io.Reader
	Options       models.PrintOptions
	ScheduledTime *time.Time
}

// Submission is the outcome of a successful submit
type Submission struct {
	Job     *models.Job
	Balance decimal.Decimal
}

// JobService drives the print job lifecycle
type JobService interface {
	Submit(ctx context.Context, studentID string, upload Upload) (*Submission, error)
	Get(ctx context.Context, principal authz.Principal, id string) (*models.Job, error)
	ListMine(ctx context.Context, studentID string, status models.JobStatus) ([]*models.Job, error)
	History(ctx context.Context, studentID string) (*dto.JobHistoryResponse, error)
	AdminList(ctx context.Context, filter models.JobFilter) ([]*models.Job, error)

	Approve(ctx context.Context, adminID, jobID string, printerID *string) (*models.Job, error)
	BulkApprove(ctx context.Context, adminID string, jobIDs []string, printerID *string) (*dto.BulkApproveResponse, error)
	Reject(ctx context.Context, adminID, jobID, reason string) (*models.Job, error)
	Complete(ctx context.Context, adminID, jobID string) (*models.Job, error)
	Delete(ctx context.Context, adminID, jobID string) error
}

type jobServiceImpl struct {
	store    repositories.Store
	pricing  *pricing.Provider
	files    filestorage.FileStorage
	notifier notify.Notifier
	events   websocket.Publisher
	now      Clock
	pin      func() (string, error)
	logger   zerolog.Logger
}

// NewJobService creates a new JobService
func NewJobService(
	store repositories.Store,
	pricingProvider *pricing.Provider,
	files filestorage.FileStorage,
	notifier notify.Notifier,
	events websocket.Publisher,
	logger zerolog.Logger,
) JobService {
	return &jobServiceImpl{
		store:    store,
		pricing:  pricingProvider,
		files:    files,
		notifier: notifier,
		events:   events,
		now:      systemClock,
		pin:      generatePickupPIN,
		logger:   logger,
	}
}

func allowedExtension(fileName string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Submit prices the upload, stores the file and atomically debits the wallet and
// queues the job. A failed transaction removes the stored file.
func (s *jobServiceImpl) Submit(ctx context.Context, studentID string, upload Upload) (*Submission, error) {
	fileName := filepath.Base(strings.TrimSpace(upload.FileName))
	if fileName == "" || fileName == "." || !allowedExtension(fileName) {
		return nil, apperrors.NewCustomError(apperrors.ErrUnsupportedFileType,
			"Invalid file format. Allowed: "+strings.Join(AllowedExtensions, ", "))
	}

	cost, err := pricing.ComputeCost(s.pricing.Current(), upload.Options)
	if err != nil {
		return nil, err
	}

	student, err := s.store.Students().GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	// Pre-check only. The conditional debit inside the transaction is authoritative.
	if student.WalletBalance.LessThan(cost) {
		return nil, insufficientFunds(cost, student.WalletBalance)
	}

	pin, err := s.pin()
	if err != nil {
		return nil, err
	}

	stored, err := s.files.Save(fileName, upload.Content)
	if err != nil {
		if errors.Is(err, filestorage.ErrTooLarge) {
			return nil, apperrors.NewInvalidArgumentError("File exceeds the maximum upload size")
		}
		s.logger.Error().Err(err).Str("studentID", studentID).Msg("Failed to store uploaded document")
		return nil, err
	}

	now := s.now()
	job := &models.Job{
		ID:            uuid.NewString(),
		StudentID:     studentID,
		FileName:      fileName,
		FilePath:      stored.Path,
		PrintOptions:  upload.Options,
		Cost:          cost,
		Status:        models.JobPending,
		PickupPIN:     pin,
		ScheduledTime: upload.ScheduledTime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var balance decimal.Decimal
	err = s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		if cost.IsPositive() {
			entry, err := ledger.Debit(ctx, tx, studentID, cost, "Print job: "+fileName)
			if err != nil {
				return err
			}
			balance = entry.Balance
		} else {
			current, err := tx.Students().GetByID(ctx, studentID)
			if err != nil {
				return err
			}
			balance = current.WalletBalance
		}
		if err := tx.Jobs().Create(ctx, job); err != nil {
			return err
		}
		return tx.Students().IncrementJobCount(ctx, studentID)
	})
	if err != nil {
		if delErr := s.files.Delete(stored.Path); delErr != nil {
			s.logger.Error().Err(delErr).Str("path", stored.Path).Msg("Failed to remove orphaned upload")
		}
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			return nil, insufficientFunds(cost, student.WalletBalance)
		}
		return nil, err
	}

	s.logger.Info().
		Str("jobID", job.ID).
		Str("studentID", studentID).
		Str("cost", cost.StringFixed(2)).
		Msg("Print job submitted")

	if student.Preferences.EmailNotifications {
		s.notifier.Notify(student.Email, notify.JobSubmitted{
			JobID:     job.ID,
			FileName:  job.FileName,
			Pages:     job.Pages,
			Copies:    job.Copies,
			Cost:      job.Cost,
			PickupPIN: job.PickupPIN,
		})
	}
	s.publish(websocket.EventJobSubmitted, job)

	return &Submission{Job: job, Balance: balance}, nil
}

func insufficientFunds(required, balance decimal.Decimal) error {
	return apperrors.NewCustomError(apperrors.ErrInsufficientFunds, "Insufficient wallet balance").
		WithDetails(map[string]interface{}{
			"required": required.StringFixed(2),
			"balance":  balance.StringFixed(2),
		})
}

// Get returns a job the principal is allowed to see
func (s *jobServiceImpl) Get(ctx context.Context, principal authz.Principal, id string) (*models.Job, error) {
	job, err := s.store.Jobs().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.AuthorizeJobAccess(principal, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobServiceImpl) ListMine(ctx context.Context, studentID string, status models.JobStatus) ([]*models.Job, error) {
	if err := validateStatusFilter(status); err != nil {
		return nil, err
	}
	return s.store.Jobs().List(ctx, models.JobFilter{StudentID: studentID, Status: status})
}

// History lists every job of the student with lifetime totals
func (s *jobServiceImpl) History(ctx context.Context, studentID string) (*dto.JobHistoryResponse, error) {
	jobs, err := s.store.Jobs().List(ctx, models.JobFilter{StudentID: studentID})
	if err != nil {
		return nil, err
	}

	summary := dto.JobHistorySummary{TotalJobs: len(jobs), TotalCost: decimal.Zero}
	for _, j := range jobs {
		summary.TotalPages += j.Pages * j.Copies
		summary.TotalCost = summary.TotalCost.Add(j.Cost)
	}
	summary.TotalCost = models.RoundMoney(summary.TotalCost)
	summary.TreesSaved = decimal.NewFromInt(int64(summary.TotalPages)).
		Div(decimal.NewFromInt(PagesPerTree)).
		Round(2)

	return &dto.JobHistoryResponse{Jobs: jobs, Summary: summary}, nil
}

// AdminList returns the newest jobs, capped at repositories.DefaultJobListLimit
func (s *jobServiceImpl) AdminList(ctx context.Context, filter models.JobFilter) ([]*models.Job, error) {
	if err := validateStatusFilter(filter.Status); err != nil {
		return nil, err
	}
	if filter.Limit == 0 || filter.Limit > repositories.DefaultJobListLimit {
		filter.Limit = repositories.DefaultJobListLimit
	}
	return s.store.Jobs().List(ctx, filter)
}

// Approve routes a pending job to a printer
func (s *jobServiceImpl) Approve(ctx context.Context, adminID, jobID string, printerID *string) (*models.Job, error) {
	printer, err := resolvePrinter(ctx, s.store.Printers(), printerID)
	if err != nil {
		return nil, err
	}

	job, err := s.approve(ctx, adminID, jobID, printer)
	if err != nil {
		return nil, err
	}
	s.afterApprove(ctx, job)
	return job, nil
}

func (s *jobServiceImpl) approve(ctx context.Context, adminID, jobID string, printer *models.Printer) (*models.Job, error) {
	job, err := s.store.Jobs().Transition(ctx, jobID, models.JobTransition{
		From:    models.SourcesFor(models.JobApproved),
		To:      models.JobApproved,
		At:      s.now(),
		Actor:   adminID,
		Printer: printer,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("jobID", jobID).Str("printerID", printer.ID).Str("adminID", adminID).Msg("Print job approved")
	return job, nil
}

func (s *jobServiceImpl) afterApprove(ctx context.Context, job *models.Job) {
	s.notifyStudent(ctx, job.StudentID, func(*models.Student) notify.Notification {
		return notify.JobApproved{
			JobID:           job.ID,
			FileName:        job.FileName,
			PrinterName:     deref(job.PrinterName),
			PrinterLocation: deref(job.PrinterLocation),
			PickupPIN:       job.PickupPIN,
		}
	})
	s.publish(websocket.EventJobApproved, job)
}

// BulkApprove resolves the printer once, then approves each job independently.
// A printer problem fails the whole batch before any job changes.
func (s *jobServiceImpl) BulkApprove(ctx context.Context, adminID string, jobIDs []string, printerID *string) (*dto.BulkApproveResponse, error) {
	if len(jobIDs) == 0 {
		return nil, apperrors.NewInvalidArgumentError("at least one job id is required")
	}

	printer, err := resolvePrinter(ctx, s.store.Printers(), printerID)
	if err != nil {
		return nil, err
	}

	result := &dto.BulkApproveResponse{Approved: []string{}, Failed: []dto.BulkFailure{}}
	seen := make(map[string]struct{}, len(jobIDs))
	for _, id := range jobIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		job, err := s.approve(ctx, adminID, id, printer)
		if err != nil {
			result.Failed = append(result.Failed, dto.BulkFailure{ID: id, Reason: s.failureReason(err)})
			continue
		}
		result.Approved = append(result.Approved, id)
		s.afterApprove(ctx, job)
	}

	s.logger.Info().
		Int("approved", len(result.Approved)).
		Int("failed", len(result.Failed)).
		Str("printerID", printer.ID).
		Msg("Bulk approval finished")
	return result, nil
}

func (s *jobServiceImpl) failureReason(err error) string {
	if msg := apperrors.Message(err); msg != "" {
		return msg
	}
	if errors.Is(err, apperrors.ErrPersistence) {
		s.logger.Error().Err(err).Msg("Bulk approval item failed")
		return "Internal error"
	}
	return err.Error()
}

// Reject moves a pending or approved job to rejected and refunds its full cost in the
// same transaction
func (s *jobServiceImpl) Reject(ctx context.Context, adminID, jobID, reason string) (*models.Job, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultRejectionReason
	}

	var job *models.Job
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		job, err = tx.Jobs().Transition(ctx, jobID, models.JobTransition{
			From:   models.SourcesFor(models.JobRejected),
			To:     models.JobRejected,
			At:     s.now(),
			Actor:  adminID,
			Reason: reason,
		})
		if err != nil {
			return err
		}
		if !job.Cost.IsPositive() {
			return nil
		}
		_, err = ledger.Credit(ctx, tx, job.StudentID, job.Cost, "Refund for job "+job.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("jobID", jobID).
		Str("adminID", adminID).
		Str("refund", job.Cost.StringFixed(2)).
		Msg("Print job rejected")

	s.notifyStudent(ctx, job.StudentID, func(*models.Student) notify.Notification {
		return notify.JobRejected{JobID: job.ID, FileName: job.FileName, Reason: reason, Refund: job.Cost}
	})
	s.publish(websocket.EventJobRejected, job)
	return job, nil
}

// Complete marks an approved job printed and credits the student's counters
func (s *jobServiceImpl) Complete(ctx context.Context, adminID, jobID string) (*models.Job, error) {
	var job *models.Job
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		job, err = tx.Jobs().Transition(ctx, jobID, models.JobTransition{
			From:  models.SourcesFor(models.JobCompleted),
			To:    models.JobCompleted,
			At:    s.now(),
			Actor: adminID,
		})
		if err != nil {
			return err
		}
		return tx.Students().RecordCompletion(ctx, job.StudentID, job.Pages, job.Cost, job.EcoPoints())
	})
	if err != nil {
		return nil, err
	}

	eco := job.EcoPoints()
	s.logger.Info().Str("jobID", jobID).Str("adminID", adminID).Int("ecoPoints", eco).Msg("Print job completed")

	s.notifyStudent(ctx, job.StudentID, func(*models.Student) notify.Notification {
		return notify.JobCompleted{
			JobID:           job.ID,
			FileName:        job.FileName,
			PrinterLocation: deref(job.PrinterLocation),
			PickupPIN:       job.PickupPIN,
			EcoPoints:       eco,
		}
	})
	s.publish(websocket.EventJobCompleted, job)
	return job, nil
}

// Delete removes a completed or rejected job and its stored document
func (s *jobServiceImpl) Delete(ctx context.Context, adminID, jobID string) error {
	job, err := s.store.Jobs().GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if !job.Status.Terminal() {
		return apperrors.NewCustomError(apperrors.ErrInvalidTransition,
			fmt.Sprintf("Job is %s and cannot be deleted", job.Status)).
			WithDetails(map[string]interface{}{"currentStatus": string(job.Status)})
	}

	if err := s.store.Jobs().Delete(ctx, jobID); err != nil {
		return err
	}
	if err := s.files.Delete(job.FilePath); err != nil {
		s.logger.Warn().Err(err).Str("jobID", jobID).Msg("Failed to remove document of deleted job")
	}

	s.logger.Info().Str("jobID", jobID).Str("adminID", adminID).Msg("Print job deleted")
	s.publish(websocket.EventJobDeleted, job)
	return nil
}

// notifyStudent queues a notification when the student opted in. Lookup failures are
// logged and swallowed; the state change has already committed.
func (s *jobServiceImpl) notifyStudent(ctx context.Context, studentID string, build func(*models.Student) notify.Notification) {
	student, err := s.store.Students().GetByID(ctx, studentID)
	if err != nil {
		s.logger.Warn().Err(err).Str("studentID", studentID).Msg("Skipping notification, student lookup failed")
		return
	}
	if !student.Preferences.EmailNotifications {
		return
	}
	s.notifier.Notify(student.Email, build(student))
}

func (s *jobServiceImpl) publish(eventType string, job *models.Job) {
	s.events.Publish(websocket.JobEvent{
		Type:      eventType,
		JobID:     job.ID,
		StudentID: job.StudentID,
		Status:    string(job.Status),
		PrinterID: deref(job.PrinterID),
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func validateStatusFilter(status models.JobStatus) error {
	if status == "" || status.Valid() {
		return nil
	}
	valid := []string{
		string(models.JobPending), string(models.JobApproved),
		string(models.JobCompleted), string(models.JobRejected),
	}
	sort.Strings(valid)
	return apperrors.NewInvalidArgumentError(fmt.Sprintf("unknown job status %q, expected one of: %s",
		status, strings.Join(valid, ", ")))
}

package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yigit/printq/internal/app/models"
)

// StudentRepository persists student accounts and their wallet balance
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id string) (*models.Student, error)
	GetByEmail(ctx context.Context, email string) (*models.Student, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]*models.Student, error)

	// Debit subtracts amount only when the balance covers it and returns the new balance.
	// It fails with apperrors.ErrInsufficientFunds otherwise.
	Debit(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error)
	// Credit adds amount and returns the new balance.
	Credit(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error)

	IncrementJobCount(ctx context.Context, id string) error
	RecordCompletion(ctx context.Context, id string, pages int, spent decimal.Decimal, ecoPoints int) error
	UpdatePreferences(ctx context.Context, id string, prefs models.Preferences) error

	// ListBelowBalance returns students with email notifications on whose balance is under threshold
	ListBelowBalance(ctx context.Context, threshold decimal.Decimal) ([]*models.Student, error)
}

// AdminRepository persists administrator accounts
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]*models.Admin, error)
}

// JobRepository persists print jobs
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id string) (*models.Job, error)
	// List returns jobs newest first
	List(ctx context.Context, filter models.JobFilter) ([]*models.Job, error)

	// Transition applies t only if the job's current status is one of t.From.
	// A lost race yields an apperrors.ErrInvalidTransition naming the status observed.
	Transition(ctx context.Context, id string, t models.JobTransition) (*models.Job, error)

	Delete(ctx context.Context, id string) error
	// DeleteCompletedBefore removes completed jobs finished before cutoff and returns them.
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) ([]*models.Job, error)
}

// PrinterRepository persists the printer registry
type PrinterRepository interface {
	Create(ctx context.Context, printer *models.Printer) error
	GetByID(ctx context.Context, id string) (*models.Printer, error)
	// List returns printers ordered by name
	List(ctx context.Context) ([]*models.Printer, error)
	// ListOnline returns online printers ordered by name
	ListOnline(ctx context.Context) ([]*models.Printer, error)
	Update(ctx context.Context, id string, update models.PrinterUpdate) (*models.Printer, error)
	// ListLowSupplies returns printers whose paper or toner level is below threshold
	ListLowSupplies(ctx context.Context, threshold int) ([]*models.Printer, error)
	Count(ctx context.Context) (int, error)
}

// TransactionRepository appends to and reads the wallet ledger
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	// ListByStudent returns a student's transactions newest first
	ListByStudent(ctx context.Context, studentID string, limit uint64) ([]*models.Transaction, error)
}

// TxFn runs against a transactional view of the store
type TxFn func(ctx context.Context, store Store) error

// Store groups the repositories behind one transactional boundary.
type Store interface {
	Students() StudentRepository
	Admins() AdminRepository
	Jobs() JobRepository
	Printers() PrinterRepository
	Transactions() TransactionRepository

	// WithTx runs fn in a transaction and commits when fn returns nil.
	// Calling WithTx on a store that is already transactional joins that transaction.
	WithTx(ctx context.Context, fn TxFn) error
}

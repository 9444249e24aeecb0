// Package memstore is an in-memory repositories.Store. Transactions run under a
// store-wide lock against a copy of the data that replaces the original on commit.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/app/repositories"
	"github.com/yigit/printq/internal/pkg/apperrors"
)

type state struct {
	students     map[string]models.Student
	admins       map[string]models.Admin
	jobs         map[string]models.Job
	printers     map[string]models.Printer
	transactions []models.Transaction
}

func newState() *state {
	return &state{
		students: map[string]models.Student{},
		admins:   map[string]models.Admin{},
		jobs:     map[string]models.Job{},
		printers: map[string]models.Printer{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.students {
		c.students[k] = v
	}
	for k, v := range s.admins {
		c.admins[k] = v
	}
	for k, v := range s.jobs {
		c.jobs[k] = v
	}
	for k, v := range s.printers {
		c.printers[k] = v
	}
	c.transactions = append([]models.Transaction(nil), s.transactions...)
	return c
}

// Store implements repositories.Store in memory
type Store struct {
	mu   *sync.Mutex
	root **state
	data *state
	inTx bool
}

var _ repositories.Store = (*Store)(nil)

// New creates an empty store
func New() *Store {
	data := newState()
	return &Store{mu: &sync.Mutex{}, root: &data}
}

// view returns the data to operate on and a release func
func (s *Store) view() (*state, func()) {
	if s.inTx {
		return s.data, func() {}
	}
	s.mu.Lock()
	return *s.root, s.mu.Unlock
}

// WithTx runs fn against a private copy and publishes it when fn succeeds
func (s *Store) WithTx(ctx context.Context, fn repositories.TxFn) error {
	if s.inTx {
		return fn(ctx, s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := (*s.root).clone()
	if err := fn(ctx, &Store{mu: s.mu, root: s.root, data: work, inTx: true}); err != nil {
		return err
	}
	*s.root = work
	return nil
}

func (s *Store) Students() repositories.StudentRepository         { return students{s} }
func (s *Store) Admins() repositories.AdminRepository             { return admins{s} }
func (s *Store) Jobs() repositories.JobRepository                 { return jobs{s} }
func (s *Store) Printers() repositories.PrinterRepository         { return printers{s} }
func (s *Store) Transactions() repositories.TransactionRepository { return transactions{s} }

type students struct{ s *Store }

func (r students) Create(_ context.Context, st *models.Student) error {
	data, done := r.s.view()
	defer done()
	for _, existing := range data.students {
		if existing.Email == st.Email {
			return apperrors.NewConflictError("email is already registered")
		}
		if existing.StudentNumber == st.StudentNumber {
			return apperrors.NewConflictError("student number is already registered")
		}
	}
	data.students[st.ID] = *st
	return nil
}

func (r students) GetByID(_ context.Context, id string) (*models.Student, error) {
	data, done := r.s.view()
	defer done()
	st, ok := data.students[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("student not found")
	}
	return &st, nil
}

func (r students) GetByEmail(_ context.Context, email string) (*models.Student, error) {
	data, done := r.s.view()
	defer done()
	for _, st := range data.students {
		if st.Email == email {
			st := st
			return &st, nil
		}
	}
	return nil, apperrors.NewNotFoundError("student not found")
}

func (r students) Exists(_ context.Context, id string) (bool, error) {
	data, done := r.s.view()
	defer done()
	_, ok := data.students[id]
	return ok, nil
}

func (r students) List(_ context.Context) ([]*models.Student, error) {
	data, done := r.s.view()
	defer done()
	out := make([]*models.Student, 0, len(data.students))
	for _, st := range data.students {
		st := st
		out = append(out, &st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r students) ListBelowBalance(_ context.Context, threshold decimal.Decimal) ([]*models.Student, error) {
	data, done := r.s.view()
	defer done()
	out := []*models.Student{}
	for _, st := range data.students {
		if st.Preferences.EmailNotifications && st.WalletBalance.LessThan(threshold) {
			st := st
			out = append(out, &st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WalletBalance.LessThan(out[j].WalletBalance) })
	return out, nil
}

func (r students) mutate(id string, fn func(*models.Student) error) error {
	data, done := r.s.view()
	defer done()
	st, ok := data.students[id]
	if !ok {
		return apperrors.NewNotFoundError("student not found")
	}
	if err := fn(&st); err != nil {
		return err
	}
	st.UpdatedAt = time.Now().UTC()
	data.students[id] = st
	return nil
}

func (r students) Debit(_ context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.mutate(id, func(st *models.Student) error {
		if st.WalletBalance.LessThan(amount) {
			return apperrors.ErrInsufficientFunds
		}
		st.WalletBalance = models.RoundMoney(st.WalletBalance.Sub(amount))
		balance = st.WalletBalance
		return nil
	})
	return balance, err
}

func (r students) Credit(_ context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.mutate(id, func(st *models.Student) error {
		st.WalletBalance = models.RoundMoney(st.WalletBalance.Add(amount))
		balance = st.WalletBalance
		return nil
	})
	return balance, err
}

func (r students) IncrementJobCount(_ context.Context, id string) error {
	return r.mutate(id, func(st *models.Student) error {
		st.TotalJobs++
		return nil
	})
}

func (r students) RecordCompletion(_ context.Context, id string, pages int, spent decimal.Decimal, eco int) error {
	return r.mutate(id, func(st *models.Student) error {
		st.TotalPages += pages
		st.TotalSpent = models.RoundMoney(st.TotalSpent.Add(spent))
		st.EcoPoints += eco
		return nil
	})
}

func (r students) UpdatePreferences(_ context.Context, id string, prefs models.Preferences) error {
	return r.mutate(id, func(st *models.Student) error {
		st.Preferences = prefs
		return nil
	})
}

type admins struct{ s *Store }

func (r admins) Create(_ context.Context, a *models.Admin) error {
	data, done := r.s.view()
	defer done()
	for _, existing := range data.admins {
		if existing.Email == a.Email {
			return apperrors.NewConflictError("email is already registered")
		}
	}
	data.admins[a.ID] = *a
	return nil
}

func (r admins) GetByID(_ context.Context, id string) (*models.Admin, error) {
	data, done := r.s.view()
	defer done()
	a, ok := data.admins[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("admin not found")
	}
	return &a, nil
}

func (r admins) GetByEmail(_ context.Context, email string) (*models.Admin, error) {
	data, done := r.s.view()
	defer done()
	for _, a := range data.admins {
		if a.Email == email {
			a := a
			return &a, nil
		}
	}
	return nil, apperrors.NewNotFoundError("admin not found")
}

func (r admins) Exists(_ context.Context, id string) (bool, error) {
	data, done := r.s.view()
	defer done()
	_, ok := data.admins[id]
	return ok, nil
}

func (r admins) List(_ context.Context) ([]*models.Admin, error) {
	data, done := r.s.view()
	defer done()
	out := make([]*models.Admin, 0, len(data.admins))
	for _, a := range data.admins {
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

type jobs struct{ s *Store }

func (r jobs) Create(_ context.Context, j *models.Job) error {
	data, done := r.s.view()
	defer done()
	if _, ok := data.students[j.StudentID]; !ok {
		return apperrors.NewNotFoundError("student not found")
	}
	data.jobs[j.ID] = *j
	return nil
}

func (r jobs) GetByID(_ context.Context, id string) (*models.Job, error) {
	data, done := r.s.view()
	defer done()
	j, ok := data.jobs[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("job not found")
	}
	return &j, nil
}

func (r jobs) List(_ context.Context, f models.JobFilter) ([]*models.Job, error) {
	data, done := r.s.view()
	defer done()
	out := []*models.Job{}
	for _, j := range data.jobs {
		if f.StudentID != "" && j.StudentID != f.StudentID {
			continue
		}
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		if f.PrinterID != "" && (j.PrinterID == nil || *j.PrinterID != f.PrinterID) {
			continue
		}
		j := j
		out = append(out, &j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	if f.Limit > 0 && uint64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r jobs) Transition(_ context.Context, id string, t models.JobTransition) (*models.Job, error) {
	data, done := r.s.view()
	defer done()
	j, ok := data.jobs[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("job not found")
	}

	allowed := false
	for _, from := range t.From {
		if j.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperrors.NewInvalidTransitionError(string(j.Status))
	}

	at := t.At
	actor := t.Actor
	j.Status = t.To
	j.UpdatedAt = at
	switch t.To {
	case models.JobApproved:
		j.ApprovedBy, j.ApprovedAt = &actor, &at
		if t.Printer != nil {
			pid, name, loc := t.Printer.ID, t.Printer.Name, t.Printer.Location
			j.PrinterID, j.PrinterName, j.PrinterLocation = &pid, &name, &loc
		}
	case models.JobRejected:
		reason := t.Reason
		j.RejectedBy, j.RejectedAt, j.RejectionReason = &actor, &at, &reason
		j.PrinterID, j.PrinterName, j.PrinterLocation = nil, nil, nil
	case models.JobCompleted:
		j.CompletedAt = &at
	}
	data.jobs[id] = j
	return &j, nil
}

func (r jobs) Delete(_ context.Context, id string) error {
	data, done := r.s.view()
	defer done()
	if _, ok := data.jobs[id]; !ok {
		return apperrors.NewNotFoundError("job not found")
	}
	delete(data.jobs, id)
	return nil
}

func (r jobs) DeleteCompletedBefore(_ context.Context, cutoff time.Time) ([]*models.Job, error) {
	data, done := r.s.view()
	defer done()
	out := []*models.Job{}
	for id, j := range data.jobs {
		if j.Status == models.JobCompleted && j.CompletedAt != nil && j.CompletedAt.Before(cutoff) {
			j := j
			out = append(out, &j)
			delete(data.jobs, id)
		}
	}
	return out, nil
}

type printers struct{ s *Store }

func (r printers) Create(_ context.Context, p *models.Printer) error {
	data, done := r.s.view()
	defer done()
	data.printers[p.ID] = *p
	return nil
}

func (r printers) GetByID(_ context.Context, id string) (*models.Printer, error) {
	data, done := r.s.view()
	defer done()
	p, ok := data.printers[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("printer not found")
	}
	return &p, nil
}

func (r printers) filter(keep func(models.Printer) bool) []*models.Printer {
	data, done := r.s.view()
	defer done()
	out := []*models.Printer{}
	for _, p := range data.printers {
		if keep(p) {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r printers) List(_ context.Context) ([]*models.Printer, error) {
	return r.filter(func(models.Printer) bool { return true }), nil
}

func (r printers) ListOnline(_ context.Context) ([]*models.Printer, error) {
	return r.filter(func(p models.Printer) bool { return p.Status == models.PrinterOnline }), nil
}

func (r printers) ListLowSupplies(_ context.Context, threshold int) ([]*models.Printer, error) {
	return r.filter(func(p models.Printer) bool {
		return p.PaperLevel < threshold || p.TonerLevel < threshold
	}), nil
}

func (r printers) Update(_ context.Context, id string, u models.PrinterUpdate) (*models.Printer, error) {
	data, done := r.s.view()
	defer done()
	p, ok := data.printers[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("printer not found")
	}
	p = u.Apply(p)
	p.UpdatedAt = time.Now().UTC()
	data.printers[id] = p
	return &p, nil
}

func (r printers) Count(_ context.Context) (int, error) {
	data, done := r.s.view()
	defer done()
	return len(data.printers), nil
}

type transactions struct{ s *Store }

func (r transactions) Create(_ context.Context, t *models.Transaction) error {
	data, done := r.s.view()
	defer done()
	data.transactions = append(data.transactions, *t)
	return nil
}

func (r transactions) ListByStudent(_ context.Context, studentID string, limit uint64) ([]*models.Transaction, error) {
	data, done := r.s.view()
	defer done()
	out := []*models.Transaction{}
	for i := len(data.transactions) - 1; i >= 0; i-- {
		t := data.transactions[i]
		if t.StudentID != studentID {
			continue
		}
		out = append(out, &t)
		if limit > 0 && uint64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/app/pricing"
	"github.com/yigit/printq/internal/app/repositories/memstore"
	"github.com/yigit/printq/internal/pkg/filestorage"
	"github.com/yigit/printq/internal/pkg/notify"
	"github.com/yigit/printq/internal/pkg/websocket"
)

type sentNotification struct {
	To string
	N  notify.Notification
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (f *fakeNotifier) Notify(to string, n notify.Notification) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{To: to, N: n})
	return true
}

func (f *fakeNotifier) kinds() []notify.Kind {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]notify.Kind, 0, len(f.sent))
	for _, s := range f.sent {
		out = append(out, s.N.Kind())
	}
	return out
}

type fakePublisher struct {
	mu     sync.Mutex
	events []websocket.JobEvent
}

func (f *fakePublisher) Publish(e websocket.JobEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type memFiles struct {
	mu    sync.Mutex
	files map[string][]byte
	fail  error
}

func newMemFiles() *memFiles { return &memFiles{files: map[string][]byte{}} }

func (m *memFiles) Save(name string, r io.Reader) (*filestorage.FileInfo, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("docs/%s-%s", uuid.NewString(), name)
	m.files[path] = buf.Bytes()
	return &filestorage.FileInfo{Path: path, Filename: name, FileSize: int64(buf.Len())}, nil
}

func (m *memFiles) Delete(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	return nil
}

func (m *memFiles) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

type fixture struct {
	store    *memstore.Store
	notifier *fakeNotifier
	events   *fakePublisher
	files    *memFiles
	pricing  *pricing.Provider
	jobs     *jobServiceImpl

	clockMu sync.Mutex
	now     time.Time
}

// tick advances the fake clock so every call observes a distinct instant
func (f *fixture) tick() time.Time {
	f.clockMu.Lock()
	defer f.clockMu.Unlock()
	f.now = f.now.Add(time.Second)
	return f.now
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memstore.New(),
		notifier: &fakeNotifier{},
		events:   &fakePublisher{},
		files:    newMemFiles(),
		pricing:  pricing.NewProvider(pricing.Default()),
		now:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	svc := NewJobService(f.store, f.pricing, f.files, f.notifier, f.events, zerolog.Nop()).(*jobServiceImpl)
	svc.now = f.tick
	f.jobs = svc
	return f
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) addStudent(t *testing.T, balance string) *models.Student {
	t.Helper()
	id := uuid.NewString()
	st := &models.Student{
		ID:            id,
		Username:      "student-" + id[:8],
		Email:         id[:8] + "@campus.edu",
		StudentNumber: id[:12],
		WalletBalance: money(balance),
		TotalSpent:    decimal.Zero,
		Preferences:   models.DefaultPreferences(),
		CreatedAt:     f.tick(),
	}
	st.UpdatedAt = st.CreatedAt
	require.NoError(t, f.store.Students().Create(context.Background(), st))
	return st
}

func (f *fixture) addPrinter(t *testing.T, name string, status models.PrinterStatus) *models.Printer {
	t.Helper()
	p := &models.Printer{
		ID:         uuid.NewString(),
		Name:       name,
		Location:   name + " location",
		Type:       models.PrinterMono,
		Status:     status,
		PaperLevel: 80,
		TonerLevel: 80,
		CreatedAt:  f.tick(),
	}
	p.UpdatedAt = p.CreatedAt
	require.NoError(t, f.store.Printers().Create(context.Background(), p))
	return p
}

func (f *fixture) balance(t *testing.T, studentID string) string {
	t.Helper()
	st, err := f.store.Students().GetByID(context.Background(), studentID)
	require.NoError(t, err)
	return st.WalletBalance.StringFixed(2)
}

// tenPagesMono costs 10.50 at default prices
func tenPagesMono() models.PrintOptions {
	return models.PrintOptions{Pages: 10, Copies: 1, PaperSize: models.PaperA4}
}

func (f *fixture) submit(t *testing.T, studentID string, opts models.PrintOptions) *models.Job {
	t.Helper()
	res, err := f.jobs.Submit(context.Background(), studentID, Upload{
		FileName: "notes.pdf",
		Content:  bytes.NewReader([]byte("%PDF")),
		Options:  opts,
	})
	require.NoError(t, err)
	return res.Job
}

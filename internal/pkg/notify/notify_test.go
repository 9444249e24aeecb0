package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu    sync.Mutex
	got   []string
	block chan struct{}
	fail  bool
	panic bool
}

func (s *recordingSender) Send(_ context.Context, to string, n Notification) error {
	if s.block != nil {
		<-s.block
	}
	if s.panic {
		panic("sender exploded")
	}
	s.mu.Lock()
	s.got = append(s.got, to+":"+string(n.Kind()))
	s.mu.Unlock()
	if s.fail {
		return errors.New("smtp down")
	}
	return nil
}

func (s *recordingSender) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.got...)
}

func TestDispatcher_DeliversQueued(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(Config{Workers: 2, QueueSize: 8}, sender, zerolog.Nop())
	d.Start()

	require.True(t, d.Notify("a@x", AccountCreated{Username: "a"}))
	require.True(t, d.Notify("b@x", LowBalance{Balance: decimal.NewFromInt(1), Threshold: decimal.NewFromInt(5)}))
	require.NoError(t, d.Shutdown(context.Background()))

	require.ElementsMatch(t, []string{"a@x:account_created", "b@x:low_balance"}, sender.received())
	require.Equal(t, uint64(2), d.Stats().Sent)
}

func TestDispatcher_DropsWhenFullWithoutBlocking(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	d := NewDispatcher(Config{Workers: 1, QueueSize: 1}, sender, zerolog.Nop())
	d.Start()

	// First message occupies the worker, second fills the queue.
	require.True(t, d.Notify("a@x", AccountCreated{}))
	require.Eventually(t, func() bool { return len(d.queue) == 0 }, time.Second, time.Millisecond)
	require.True(t, d.Notify("b@x", AccountCreated{}))

	start := time.Now()
	require.False(t, d.Notify("c@x", AccountCreated{}))
	require.Less(t, time.Since(start), 100*time.Millisecond)
	require.Equal(t, uint64(1), d.Stats().Dropped)

	close(sender.block)
	require.NoError(t, d.Shutdown(context.Background()))
	require.Len(t, sender.received(), 2)
}

func TestDispatcher_FailuresAndPanicsAreContained(t *testing.T) {
	failing := &recordingSender{fail: true}
	d := NewDispatcher(Config{Workers: 1, QueueSize: 4}, failing, zerolog.Nop())
	d.Start()
	d.Notify("a@x", AccountCreated{})
	require.NoError(t, d.Shutdown(context.Background()))
	require.Equal(t, uint64(1), d.Stats().Failed)

	panicking := &recordingSender{panic: true}
	d = NewDispatcher(Config{Workers: 1, QueueSize: 4}, panicking, zerolog.Nop())
	d.Start()
	d.Notify("a@x", AccountCreated{})
	d.Notify("b@x", AccountCreated{})
	require.NoError(t, d.Shutdown(context.Background()))
	require.Equal(t, uint64(2), d.Stats().Failed)
}

func TestDispatcher_NotifyAfterShutdown(t *testing.T) {
	d := NewDispatcher(Config{}, &recordingSender{}, zerolog.Nop())
	d.Start()
	require.NoError(t, d.Shutdown(context.Background()))
	require.False(t, d.Notify("a@x", AccountCreated{}))
	require.NoError(t, d.Shutdown(context.Background()))
}

func TestTemplates_RenderEveryKind(t *testing.T) {
	tmpl, err := ParseTemplates()
	require.NoError(t, err)

	cases := []Notification{
		AccountCreated{Username: "jdoe"},
		JobSubmitted{JobID: "j1", FileName: "a.pdf", Pages: 3, Copies: 2, Cost: decimal.RequireFromString("6.3"), PickupPIN: "123456"},
		JobApproved{JobID: "j1", FileName: "a.pdf", PrinterName: "Library Printer 1", PrinterLocation: "Main Library", PickupPIN: "123456"},
		JobCompleted{JobID: "j1", FileName: "a.pdf", PickupPIN: "123456", EcoPoints: 6},
		JobRejected{JobID: "j1", FileName: "a.pdf", Reason: "Rejected by admin", Refund: decimal.RequireFromString("6.30")},
		LowBalance{Username: "jdoe", Balance: decimal.RequireFromString("1.5"), Threshold: decimal.NewFromInt(5)},
	}
	for _, n := range cases {
		html, err := tmpl.Render(n)
		require.NoError(t, err, n.Kind())
		require.Contains(t, html, "PrintQ")
	}

	html, err := tmpl.Render(JobSubmitted{FileName: "<script>.pdf", Cost: decimal.RequireFromString("6.3")})
	require.NoError(t, err)
	require.Contains(t, html, "6.30")
	require.False(t, strings.Contains(html, "<script>"))
}

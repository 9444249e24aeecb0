package pricing

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/pkg/apperrors"
)

func opts(pages int) models.PrintOptions {
	return models.PrintOptions{Pages: pages, PaperSize: models.PaperA4, Copies: 1}
}

func requireMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.StringFixed(2))
}

func TestComputeCost_Examples(t *testing.T) {
	p := Default()

	cost, err := ComputeCost(p, opts(10))
	require.NoError(t, err)
	requireMoney(t, "10.50", cost)

	withBinding := opts(10)
	withBinding.Binding = true
	cost, err = ComputeCost(p, withBinding)
	require.NoError(t, err)
	requireMoney(t, "14.50", cost)

	a3 := opts(10)
	a3.PaperSize = models.PaperA3
	cost, err = ComputeCost(p, a3)
	require.NoError(t, err)
	requireMoney(t, "26.25", cost)
}

func TestComputeCost_UnitTable(t *testing.T) {
	p := Default()
	cases := []struct {
		color, duplex bool
		want          string
	}{
		{false, false, "1.05"},
		{false, true, "2.08"},
		{true, false, "3.30"},
		{true, true, "5.25"},
	}
	for _, tc := range cases {
		o := opts(1)
		o.Color, o.Duplex = tc.color, tc.duplex
		cost, err := ComputeCost(p, o)
		require.NoError(t, err)
		requireMoney(t, tc.want, cost)
	}
}

func TestComputeCost_BindingIndependentOfCopies(t *testing.T) {
	p := Default()
	o := opts(2)
	o.Copies = 3
	o.Binding = true

	cost, err := ComputeCost(p, o)
	require.NoError(t, err)
	// 1.05 * 2 * 3 + 4.00
	requireMoney(t, "10.30", cost)
}

func TestComputeCost_A3AppliesBeforeBinding(t *testing.T) {
	p := Default()
	o := opts(4)
	o.PaperSize = models.PaperA3
	o.Binding = true

	cost, err := ComputeCost(p, o)
	require.NoError(t, err)
	// 1.05 * 4 * 2.5 + 4.00
	requireMoney(t, "14.50", cost)
}

func TestComputeCost_Monotonic(t *testing.T) {
	p := Default()
	for _, color := range []bool{false, true} {
		for _, size := range []models.PaperSize{models.PaperA4, models.PaperA3} {
			prev := decimal.Zero
			for pages := 1; pages <= 30; pages++ {
				o := models.PrintOptions{Pages: pages, Color: color, PaperSize: size, Copies: 1}
				cost, err := ComputeCost(p, o)
				require.NoError(t, err)
				require.True(t, cost.GreaterThanOrEqual(prev))
				prev = cost
			}

			prev = decimal.Zero
			for copies := 1; copies <= 10; copies++ {
				o := models.PrintOptions{Pages: 3, Color: color, PaperSize: size, Copies: copies}
				cost, err := ComputeCost(p, o)
				require.NoError(t, err)
				require.True(t, cost.GreaterThanOrEqual(prev))
				prev = cost
			}
		}
	}
}

func TestComputeCost_RoundsToCents(t *testing.T) {
	p := Default()
	p.BWSingle = decimal.RequireFromString("0.333")

	cost, err := ComputeCost(p, opts(1))
	require.NoError(t, err)
	requireMoney(t, "0.33", cost)

	p.BWSingle = decimal.RequireFromString("0.125")
	cost, err = ComputeCost(p, opts(1))
	require.NoError(t, err)
	requireMoney(t, "0.13", cost)
}

func TestComputeCost_InvalidInput(t *testing.T) {
	p := Default()
	bad := []models.PrintOptions{
		{Pages: 0, PaperSize: models.PaperA4, Copies: 1},
		{Pages: 1, PaperSize: models.PaperA4, Copies: 0},
		{Pages: -5, PaperSize: models.PaperA4, Copies: 1},
		{Pages: 1, PaperSize: "Letter", Copies: 1},
	}
	for _, o := range bad {
		_, err := ComputeCost(p, o)
		require.Error(t, err)
		require.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
	}
}

func TestProvider_SetValidates(t *testing.T) {
	prov := NewProvider(Default())

	bad := Default()
	bad.Binding = decimal.NewFromInt(-1)
	require.ErrorIs(t, prov.Set(bad), apperrors.ErrInvalidArgument)
	requireMoney(t, "4.00", prov.Current().Binding)

	next := Default()
	next.BWSingle = decimal.RequireFromString("0.50")
	require.NoError(t, prov.Set(next))
	requireMoney(t, "0.50", prov.Current().BWSingle)
}

func TestProvider_ConcurrentReadsAndWrites(t *testing.T) {
	prov := NewProvider(Default())
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			next := Default()
			next.BWSingle = decimal.NewFromInt(int64(i + 1))
			_ = prov.Set(next)
		}(i)
		go func() {
			defer wg.Done()
			snap := prov.Current()
			if _, err := ComputeCost(snap, opts(5)); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
}

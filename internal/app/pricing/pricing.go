// Package pricing computes the cost of a print job from a pricing table.
package pricing

import (
	"fmt"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/pkg/apperrors"
)

// Pricing is an immutable per-page price table
type Pricing struct {
	BWSingle     decimal.Decimal `json:"bwSingle" swaggertype:"string" example:"1.05"`
	BWDuplex     decimal.Decimal `json:"bwDuplex" swaggertype:"string" example:"2.08"`
	ColorSingle  decimal.Decimal `json:"colorSingle" swaggertype:"string" example:"3.30"`
	ColorDuplex  decimal.Decimal `json:"colorDuplex" swaggertype:"string" example:"5.25"`
	Binding      decimal.Decimal `json:"binding" swaggertype:"string" example:"4.00"`
	A3Multiplier decimal.Decimal `json:"a3Multiplier" swaggertype:"string" example:"2.5"`
}

// Default returns the stock campus price table
func Default() Pricing {
	return Pricing{
		BWSingle:     decimal.RequireFromString("1.05"),
		BWDuplex:     decimal.RequireFromString("2.08"),
		ColorSingle:  decimal.RequireFromString("3.30"),
		ColorDuplex:  decimal.RequireFromString("5.25"),
		Binding:      decimal.RequireFromString("4.00"),
		A3Multiplier: decimal.RequireFromString("2.5"),
	}
}

// Validate checks that no price is negative and the A3 multiplier does not discount
func (p Pricing) Validate() error {
	prices := map[string]decimal.Decimal{
		"bwSingle":    p.BWSingle,
		"bwDuplex":    p.BWDuplex,
		"colorSingle": p.ColorSingle,
		"colorDuplex": p.ColorDuplex,
		"binding":     p.Binding,
	}
	for name, v := range prices {
		if v.IsNegative() {
			return apperrors.NewInvalidArgumentError(fmt.Sprintf("%s must not be negative", name))
		}
	}
	if p.A3Multiplier.LessThan(decimal.NewFromInt(1)) {
		return apperrors.NewInvalidArgumentError("a3Multiplier must be at least 1")
	}
	return nil
}

// UnitPrice returns the per-page price for the color/duplex combination
func (p Pricing) UnitPrice(color, duplex bool) decimal.Decimal {
	switch {
	case color && duplex:
		return p.ColorDuplex
	case color:
		return p.ColorSingle
	case duplex:
		return p.BWDuplex
	default:
		return p.BWSingle
	}
}

// ComputeCost prices a job: unit x pages x copies, times the A3 multiplier for A3,
// plus the binding fee once. The result is rounded to cents.
func ComputeCost(p Pricing, opts models.PrintOptions) (decimal.Decimal, error) {
	if opts.Pages < 1 {
		return decimal.Zero, apperrors.NewInvalidArgumentError("pages must be at least 1")
	}
	if opts.Copies < 1 {
		return decimal.Zero, apperrors.NewInvalidArgumentError("copies must be at least 1")
	}
	if !opts.PaperSize.Valid() {
		return decimal.Zero, apperrors.NewInvalidArgumentError(fmt.Sprintf("unsupported paper size %q", opts.PaperSize))
	}

	total := p.UnitPrice(opts.Color, opts.Duplex).
		Mul(decimal.NewFromInt(int64(opts.Pages))).
		Mul(decimal.NewFromInt(int64(opts.Copies)))

	if opts.PaperSize == models.PaperA3 {
		total = total.Mul(p.A3Multiplier)
	}
	if opts.Binding {
		total = total.Add(p.Binding)
	}

	return models.RoundMoney(total), nil
}

// Provider holds the active pricing table. Readers get a consistent snapshot;
// Set atomically replaces the table.
type Provider struct {
	current atomic.Pointer[Pricing]
}

// NewProvider creates a provider serving initial
func NewProvider(initial Pricing) *Provider {
	p := &Provider{}
	p.current.Store(&initial)
	return p
}

// Current returns the active pricing snapshot
func (p *Provider) Current() Pricing {
	return *p.current.Load()
}

// Set validates and installs a new pricing table
func (p *Provider) Set(next Pricing) error {
	if err := next.Validate(); err != nil {
		return err
	}
	p.current.Store(&next)
	return nil
}

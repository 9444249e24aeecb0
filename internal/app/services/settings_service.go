package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/app/models/dto"
	"github.com/yigit/printq/internal/app/pricing"
)

// SettingsService exposes and updates service-wide settings
type SettingsService interface {
	Get(ctx context.Context) dto.SettingsResponse
	UpdatePricing(ctx context.Context, adminID string, p pricing.Pricing) (pricing.Pricing, error)
}

type settingsServiceImpl struct {
	pricing     *pricing.Provider
	topUp       TopUpLimits
	maxUploadMB int
	logger      zerolog.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(provider *pricing.Provider, topUp TopUpLimits, maxUploadMB int, logger zerolog.Logger) SettingsService {
	return &settingsServiceImpl{pricing: provider, topUp: topUp, maxUploadMB: maxUploadMB, logger: logger}
}

func (s *settingsServiceImpl) Get(_ context.Context) dto.SettingsResponse {
	formats := make([]string, len(AllowedExtensions))
	copy(formats, AllowedExtensions)
	return dto.SettingsResponse{
		Pricing:        s.pricing.Current(),
		AllowedFormats: formats,
		MinTopUp:       s.topUp.Min.StringFixed(2),
		MaxTopUp:       s.topUp.Max.StringFixed(2),
		MaxUploadMB:    s.maxUploadMB,
	}
}

// UpdatePricing swaps in a validated price table. Jobs already submitted keep their cost.
func (s *settingsServiceImpl) UpdatePricing(_ context.Context, adminID string, p pricing.Pricing) (pricing.Pricing, error) {
	p = pricing.Pricing{
		BWSingle:     models.RoundMoney(p.BWSingle),
		BWDuplex:     models.RoundMoney(p.BWDuplex),
		ColorSingle:  models.RoundMoney(p.ColorSingle),
		ColorDuplex:  models.RoundMoney(p.ColorDuplex),
		Binding:      models.RoundMoney(p.Binding),
		A3Multiplier: p.A3Multiplier,
	}
	if err := s.pricing.Set(p); err != nil {
		return pricing.Pricing{}, err
	}

	s.logger.Info().
		Str("adminID", adminID).
		Str("bwSingle", p.BWSingle.StringFixed(2)).
		Str("colorSingle", p.ColorSingle.StringFixed(2)).
		Msg("Pricing updated")
	return p, nil
}

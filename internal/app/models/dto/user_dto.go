package dto

import (
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/app/pricing"
)

// UpdatePreferencesRequest toggles notification preferences; omitted fields are kept
type UpdatePreferencesRequest struct {
	EmailNotifications *bool `json:"emailNotifications,omitempty" example:"false"`
	EcoTips            *bool `json:"ecoTips,omitempty" example:"true"`
	AutoDuplex         *bool `json:"autoDuplex,omitempty" example:"true"`
}

// ToUpdate converts the request into a partial preferences update
func (r UpdatePreferencesRequest) ToUpdate() models.PreferencesUpdate {
	return models.PreferencesUpdate{
		EmailNotifications: r.EmailNotifications,
		EcoTips:            r.EcoTips,
		AutoDuplex:         r.AutoDuplex,
	}
}

// UsersResponse lists every account
type UsersResponse struct {
	Students []*models.Student `json:"students"`
	Admins   []*models.Admin   `json:"admins"`
}

// SettingsResponse exposes the public service settings
type SettingsResponse struct {
	Pricing        pricing.Pricing `json:"pricing"`
	AllowedFormats []string        `json:"allowedFormats" example:".pdf,.docx"`
	MinTopUp       string          `json:"minTopUp" example:"5.00"`
	MaxTopUp       string          `json:"maxTopUp" example:"500.00"`
	MaxUploadMB    int             `json:"maxUploadMb" example:"50"`
}

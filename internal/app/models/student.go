package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Student is a wallet holder who submits print jobs ('students' table)
type Student struct {
	ID            string          `json:"id" db:"id" example:"6f1c2d3e-0000-4000-8000-000000000001"`
	Username      string          `json:"username" db:"username" example:"jdoe"`
	Email         string          `json:"email" db:"email" example:"jdoe@campus.edu"`
	StudentNumber string          `json:"studentNumber" db:"student_number" example:"20231234"`
	PasswordHash  string          `json:"-" db:"password_hash"`
	WalletBalance decimal.Decimal `json:"walletBalance" db:"wallet_balance" swaggertype:"string" example:"25.00"`

	// Cumulative counters, mutated on submission and completion only
	TotalJobs  int             `json:"totalJobs" db:"total_jobs" example:"3"`
	TotalPages int             `json:"totalPages" db:"total_pages" example:"42"`
	TotalSpent decimal.Decimal `json:"totalSpent" db:"total_spent" swaggertype:"string" example:"44.10"`
	EcoPoints  int             `json:"ecoPoints" db:"eco_points" example:"20"`

	Preferences Preferences `json:"preferences"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Preferences holds a student's notification and printing preferences
type Preferences struct {
	EmailNotifications bool `json:"emailNotifications" db:"email_notifications" example:"true"`
	EcoTips            bool `json:"ecoTips" db:"eco_tips" example:"true"`
	AutoDuplex         bool `json:"autoDuplex" db:"auto_duplex" example:"true"`
}

// DefaultPreferences are applied to every newly registered student
func DefaultPreferences() Preferences {
	return Preferences{EmailNotifications: true, EcoTips: true, AutoDuplex: true}
}

// PreferencesUpdate carries a partial preferences change; nil fields are left untouched.
type PreferencesUpdate struct {
	EmailNotifications *bool
	EcoTips            *bool
	AutoDuplex         *bool
}

// Apply merges the update into p
func (u PreferencesUpdate) Apply(p Preferences) Preferences {
	if u.EmailNotifications != nil {
		p.EmailNotifications = *u.EmailNotifications
	}
	if u.EcoTips != nil {
		p.EcoTips = *u.EcoTips
	}
	if u.AutoDuplex != nil {
		p.AutoDuplex = *u.AutoDuplex
	}
	return p
}

// Admin is an operator allowed to route and settle jobs ('admins' table)
type Admin struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username" example:"admin"`
	Email        string    `json:"email" db:"email" example:"admin@printq.local"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

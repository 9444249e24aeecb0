package models

import "github.com/shopspring/decimal"

// RoleType defines the role carried by an authenticated subject
type RoleType string

const (
	RoleStudent RoleType = "student"
	RoleAdmin   RoleType = "admin"
)

// Valid reports whether r is a known role
func (r RoleType) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// MoneyPlaces is the number of decimal places kept for every monetary amount
const MoneyPlaces = 2

// RoundMoney rounds an amount to cents, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a wallet movement
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// Transaction is an append-only wallet ledger entry ('transactions' table)
type Transaction struct {
	ID          string          `json:"id" db:"id"`
	StudentID   string          `json:"studentId" db:"student_id"`
	Type        TransactionType `json:"type" db:"type" example:"debit" enums:"credit,debit"`
	Amount      decimal.Decimal `json:"amount" db:"amount" swaggertype:"string" example:"10.50"`
	Description string          `json:"description" db:"description" example:"Print job: thesis.pdf"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

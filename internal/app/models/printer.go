package models

import "time"

// PrinterStatus is the operational state of a printer
type PrinterStatus string

const (
	PrinterOnline  PrinterStatus = "online"
	PrinterOffline PrinterStatus = "offline"
)

// Valid reports whether s is a known printer status
func (s PrinterStatus) Valid() bool {
	return s == PrinterOnline || s == PrinterOffline
}

// PrinterType classifies printer capabilities
type PrinterType string

const (
	PrinterMultifunc PrinterType = "multifunc"
	PrinterColor     PrinterType = "color"
	PrinterMono      PrinterType = "mono"
)

// Valid reports whether t is a known printer type
func (t PrinterType) Valid() bool {
	switch t {
	case PrinterMultifunc, PrinterColor, PrinterMono:
		return true
	}
	return false
}

// Printer is a physical device jobs are routed to ('printers' table)
type Printer struct {
	ID         string        `json:"id" db:"id"`
	Name       string        `json:"name" db:"name" example:"Library Printer 1"`
	Location   string        `json:"location" db:"location" example:"Main Library - Ground Floor"`
	Type       PrinterType   `json:"type" db:"type" example:"multifunc" enums:"multifunc,color,mono"`
	Status     PrinterStatus `json:"status" db:"status" example:"online" enums:"online,offline"`
	PaperLevel int           `json:"paperLevel" db:"paper_level" example:"85"`
	TonerLevel int           `json:"tonerLevel" db:"toner_level" example:"70"`
	CreatedAt  time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time     `json:"updatedAt" db:"updated_at"`
}

// Online reports whether jobs can be routed to p
func (p *Printer) Online() bool {
	return p.Status == PrinterOnline
}

// PrinterUpdate is a partial change; nil fields are left untouched.
type PrinterUpdate struct {
	Name       *string
	Location   *string
	Type       *PrinterType
	Status     *PrinterStatus
	PaperLevel *int
	TonerLevel *int
}

// Apply merges the update into a copy of p
func (u PrinterUpdate) Apply(p Printer) Printer {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Location != nil {
		p.Location = *u.Location
	}
	if u.Type != nil {
		p.Type = *u.Type
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.PaperLevel != nil {
		p.PaperLevel = *u.PaperLevel
	}
	if u.TonerLevel != nil {
		p.TonerLevel = *u.TonerLevel
	}
	return p
}

// Empty reports whether the update changes nothing
func (u PrinterUpdate) Empty() bool {
	return u.Name == nil && u.Location == nil && u.Type == nil &&
		u.Status == nil && u.PaperLevel == nil && u.TonerLevel == nil
}

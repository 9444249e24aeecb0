package dto

import "github.com/yigit/printq/internal/app/models"

// CreatePrinterRequest registers a printer
type CreatePrinterRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100" example:"Library Printer 2"`
	Location   string `json:"location" binding:"required,max=200" example:"Main Library - 1st Floor"`
	Type       string `json:"type" binding:"required,oneof=multifunc color mono" example:"mono"`
	Status     string `json:"status" binding:"omitempty,oneof=online offline" example:"online"`
	PaperLevel *int   `json:"paperLevel,omitempty" binding:"omitempty,gte=0,lte=100" example:"100"`
	TonerLevel *int   `json:"tonerLevel,omitempty" binding:"omitempty,gte=0,lte=100" example:"100"`
}

// ToModel builds a printer, defaulting to online with full supplies
func (r CreatePrinterRequest) ToModel() *models.Printer {
	p := &models.Printer{
		Name:       r.Name,
		Location:   r.Location,
		Type:       models.PrinterType(r.Type),
		Status:     models.PrinterStatus(r.Status),
		PaperLevel: 100,
		TonerLevel: 100,
	}
	if p.Status == "" {
		p.Status = models.PrinterOnline
	}
	if r.PaperLevel != nil {
		p.PaperLevel = *r.PaperLevel
	}
	if r.TonerLevel != nil {
		p.TonerLevel = *r.TonerLevel
	}
	return p
}

// UpdatePrinterRequest changes only the provided fields
type UpdatePrinterRequest struct {
	Name       *string `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	Location   *string `json:"location,omitempty" binding:"omitempty,max=200"`
	Type       *string `json:"type,omitempty" binding:"omitempty,oneof=multifunc color mono"`
	Status     *string `json:"status,omitempty" binding:"omitempty,oneof=online offline" example:"offline"`
	PaperLevel *int    `json:"paperLevel,omitempty" binding:"omitempty,gte=0,lte=100" example:"40"`
	TonerLevel *int    `json:"tonerLevel,omitempty" binding:"omitempty,gte=0,lte=100" example:"15"`
}

// ToUpdate converts the request into a partial printer update
func (r UpdatePrinterRequest) ToUpdate() models.PrinterUpdate {
	u := models.PrinterUpdate{
		Name:       r.Name,
		Location:   r.Location,
		PaperLevel: r.PaperLevel,
		TonerLevel: r.TonerLevel,
	}
	if r.Type != nil {
		t := models.PrinterType(*r.Type)
		u.Type = &t
	}
	if r.Status != nil {
		s := models.PrinterStatus(*r.Status)
		u.Status = &s
	}
	return u
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceRecord is one invoice line as it looked at import time.
// Rows are immutable once imported; corrections come in as a new batch.
type InvoiceRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BatchID       uuid.UUID `gorm:"index" json:"batch_id"`
	InvoiceNumber string    `gorm:"index" json:"invoice_number"`
	Supplier      string    `gorm:"index" json:"supplier"`
	Amount        float64   `gorm:"index" json:"amount"`
	DaysOld       int       `gorm:"index" json:"days_old"`
	ProcessState  string    `gorm:"index" json:"process_state"`
	POType        string    `gorm:"index" json:"po_type"`
	CreatedAt     time.Time `json:"created_at"`
}

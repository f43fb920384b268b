package repository

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"invoice-analytics-backend/internal/analytics"
	"invoice-analytics-backend/internal/models"
)

// InvoiceFilter is the UI-facing query parameter shape. The bucket-filter
// translator's output plugs straight into MinDays/MaxDays.
type InvoiceFilter struct {
	BatchID *uuid.UUID
	State   string
	Vendor  string
	POType  string
	MinDays *int
	MaxDays *int
}

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Expose DB if needed
func (r *InvoiceRepository) DB() *gorm.DB {
	return r.db
}

// ListByBatch returns all invoice records belonging to one batch.
func (r *InvoiceRepository) ListByBatch(batchID uuid.UUID) ([]models.InvoiceRecord, error) {
	var records []models.InvoiceRecord
	err := r.db.Where("batch_id = ?", batchID).Order("created_at ASC").Find(&records).Error
	return records, err
}

// ListRefsByBatch returns the identity/value/state projection the comparison
// engine works on. The invoice number is the identity that is stable across
// batches.
func (r *InvoiceRepository) ListRefsByBatch(batchID uuid.UUID) ([]analytics.InvoiceRef, error) {
	records, err := r.ListByBatch(batchID)
	if err != nil {
		return nil, err
	}
	refs := make([]analytics.InvoiceRef, 0, len(records))
	for _, rec := range records {
		refs = append(refs, analytics.InvoiceRef{ID: rec.InvoiceNumber, Value: rec.Amount, State: rec.ProcessState})
	}
	return refs, nil
}

// Search applies the optional filter parameters with chained wheres.
func (r *InvoiceRepository) Search(filter InvoiceFilter) ([]models.InvoiceRecord, error) {
	var records []models.InvoiceRecord

	query := r.db.Model(&models.InvoiceRecord{})

	if filter.BatchID != nil {
		query = query.Where("batch_id = ?", *filter.BatchID)
	}
	if filter.State != "" {
		query = query.Where("process_state = ?", filter.State)
	}
	if filter.Vendor != "" {
		query = query.Where("LOWER(supplier) LIKE ?", "%"+strings.ToLower(filter.Vendor)+"%")
	}
	if filter.POType != "" {
		query = query.Where("po_type = ?", filter.POType)
	}
	if filter.MinDays != nil {
		query = query.Where("days_old >= ?", *filter.MinDays)
	}
	if filter.MaxDays != nil {
		query = query.Where("days_old <= ?", *filter.MaxDays)
	}

	err := query.Order("days_old DESC").Find(&records).Error
	return records, err
}

// CreateMany inserts a slice of records in one statement.
func (r *InvoiceRepository) CreateMany(records []models.InvoiceRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.Create(&records).Error
}

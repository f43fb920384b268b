package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"invoice-analytics-backend/internal/models"
)

type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func (r *BatchRepository) Create(batch *models.ImportBatch) error {
	return r.db.Create(batch).Error
}

func (r *BatchRepository) GetByID(id uuid.UUID) (*models.ImportBatch, error) {
	var batch models.ImportBatch
	if err := r.db.First(&batch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// List returns batches ordered by imported-at ascending, insertion order on
// ties. Soft-deleted batches are included only when asked for; their rows and
// snapshots are retained for audit.
func (r *BatchRepository) List(includeDeleted bool) ([]models.ImportBatch, error) {
	var batches []models.ImportBatch
	query := r.db.Order("imported_at ASC, created_at ASC")
	if !includeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	err := query.Find(&batches).Error
	return batches, err
}

// SoftDelete flags a batch as deleted without destroying it or its snapshot.
func (r *BatchRepository) SoftDelete(id uuid.UUID) error {
	return r.db.Model(&models.ImportBatch{}).
		Where("id = ?", id).
		Update("is_deleted", true).
		Error
}

func (r *BatchRepository) UpdateProgress(id uuid.UUID, count int) error {
	return r.db.Model(&models.ImportBatch{}).
		Where("id = ?", id).
		Update("processed_count", count).
		Error
}

func (r *BatchRepository) MarkCompleted(id uuid.UUID, total int) error {
	return r.db.Model(&models.ImportBatch{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processed_count": total,
			"total_records":   total,
			"status":          "completed",
			"completed_at":    time.Now(),
		}).Error
}

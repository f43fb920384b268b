package repository

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"invoice-analytics-backend/internal/analytics"
	"invoice-analytics-backend/internal/models"
)

// SnapshotRepository persists one immutable BatchStats per batch. The write
// path is append-only: the unique index on batch_id turns a second writer
// into analytics.ErrDuplicateSnapshot.
type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Put(batchID uuid.UUID, stats analytics.BatchStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	row := models.BatchSnapshot{
		ID:        uuid.New(),
		BatchID:   batchID,
		Stats:     payload,
		CreatedAt: time.Now(),
	}
	if err := r.db.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return analytics.ErrDuplicateSnapshot
		}
		return err
	}
	return nil
}

// Get returns analytics.ErrSnapshotUnavailable for a batch with no stats.
func (r *SnapshotRepository) Get(batchID uuid.UUID) (analytics.BatchStats, error) {
	var row models.BatchSnapshot
	if err := r.db.First(&row, "batch_id = ?", batchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return analytics.BatchStats{}, analytics.ErrSnapshotUnavailable
		}
		return analytics.BatchStats{}, err
	}
	return decodeStats(row)
}

// GetMany returns the snapshots that exist for the given batch ids. Missing
// entries are simply absent from the result; callers treat absence as not
// yet backfilled.
func (r *SnapshotRepository) GetMany(batchIDs []uuid.UUID) (map[uuid.UUID]analytics.BatchStats, error) {
	out := make(map[uuid.UUID]analytics.BatchStats, len(batchIDs))
	if len(batchIDs) == 0 {
		return out, nil
	}
	var rows []models.BatchSnapshot
	if err := r.db.Where("batch_id IN ?", batchIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats, err := decodeStats(row)
		if err != nil {
			return nil, err
		}
		out[row.BatchID] = stats
	}
	return out, nil
}

func decodeStats(row models.BatchSnapshot) (analytics.BatchStats, error) {
	var stats analytics.BatchStats
	if err := json.Unmarshal(row.Stats, &stats); err != nil {
		return analytics.BatchStats{}, err
	}
	return stats, nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BatchSnapshot is the persisted form of a batch's aggregate stats.
// One row per batch, written once; the unique index on BatchID is what
// rejects a second writer.
type BatchSnapshot struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	BatchID   uuid.UUID      `gorm:"uniqueIndex"`
	Stats     datatypes.JSON `gorm:"column:stats"`
	CreatedAt time.Time
}

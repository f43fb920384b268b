package dashboard

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"invoice-analytics-backend/internal/analytics"
	"invoice-analytics-backend/internal/logger"
	"invoice-analytics-backend/internal/models"
	"invoice-analytics-backend/internal/repository"
)

// InvoiceStore is the invoice source plus the import-time write path.
type InvoiceStore interface {
	ListByBatch(batchID uuid.UUID) ([]models.InvoiceRecord, error)
	ListRefsByBatch(batchID uuid.UUID) ([]analytics.InvoiceRef, error)
	Search(filter repository.InvoiceFilter) ([]models.InvoiceRecord, error)
	CreateMany(records []models.InvoiceRecord) error
}

// BatchDirectory lists and maintains import batches.
type BatchDirectory interface {
	Create(batch *models.ImportBatch) error
	GetByID(id uuid.UUID) (*models.ImportBatch, error)
	List(includeDeleted bool) ([]models.ImportBatch, error)
	SoftDelete(id uuid.UUID) error
	UpdateProgress(id uuid.UUID, count int) error
	MarkCompleted(id uuid.UUID, total int) error
}

// SnapshotStore is the append-only BatchStats persistence contract.
type SnapshotStore interface {
	Put(batchID uuid.UUID, stats analytics.BatchStats) error
	Get(batchID uuid.UUID) (analytics.BatchStats, error)
	GetMany(batchIDs []uuid.UUID) (map[uuid.UUID]analytics.BatchStats, error)
}

// Service orchestrates batch import, snapshot building and the dashboard
// queries. Snapshots are write-once, so the read cache never invalidates.
type Service struct {
	invoices  InvoiceStore
	batches   BatchDirectory
	snapshots SnapshotStore

	// Trend carries the window policy; tests override the default.
	Trend analytics.Config

	statsCache sync.Map // batchID -> analytics.BatchStats
}

func NewService(invoices InvoiceStore, batches BatchDirectory, snapshots SnapshotStore) *Service {
	return &Service{
		invoices:  invoices,
		batches:   batches,
		snapshots: snapshots,
	}
}

// CreateBatch opens a new import batch in the processing state.
func (s *Service) CreateBatch(filename string) (*models.ImportBatch, error) {
	batch := &models.ImportBatch{
		ID:         uuid.New(),
		Filename:   filename,
		ImportedAt: time.Now(),
		Status:     "processing",
		CreatedAt:  time.Now(),
	}
	if err := s.batches.Create(batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *Service) IngestRecords(records []models.InvoiceRecord) error {
	return s.invoices.CreateMany(records)
}

func (s *Service) UpdateProgress(batchID uuid.UUID, count int) error {
	return s.batches.UpdateProgress(batchID, count)
}

// FinalizeBatch closes out an import: builds the batch's snapshot from its
// stored records, persists it and marks the batch completed.
func (s *Service) FinalizeBatch(batchID uuid.UUID, total int) (analytics.BatchStats, error) {
	stats, err := s.BackfillSnapshot(batchID)
	if err != nil {
		return analytics.BatchStats{}, err
	}
	if err := s.batches.MarkCompleted(batchID, total); err != nil {
		return analytics.BatchStats{}, err
	}
	log := logger.WithComponent("dashboard")
	log.Info().
		Str("batch_id", batchID.String()).
		Int("total_invoices", stats.TotalInvoices).
		Float64("total_value", stats.TotalValue).
		Msg("batch finalized")
	return stats, nil
}

// BackfillSnapshot computes and stores the snapshot for a batch that does
// not have one yet. A second write for the same batch surfaces
// analytics.ErrDuplicateSnapshot; it is never retried or overwritten.
func (s *Service) BackfillSnapshot(batchID uuid.UUID) (analytics.BatchStats, error) {
	records, err := s.invoices.ListByBatch(batchID)
	if err != nil {
		return analytics.BatchStats{}, err
	}
	stats := analytics.BuildBatchStats(batchID, records)
	if err := s.snapshots.Put(batchID, stats); err != nil {
		return analytics.BatchStats{}, err
	}
	s.statsCache.Store(batchID, stats)
	return stats, nil
}

// Stats returns a batch's stored snapshot.
func (s *Service) Stats(batchID uuid.UUID) (analytics.BatchStats, error) {
	if val, ok := s.statsCache.Load(batchID); ok {
		return val.(analytics.BatchStats), nil
	}
	stats, err := s.snapshots.Get(batchID)
	if err != nil {
		return analytics.BatchStats{}, err
	}
	s.statsCache.Store(batchID, stats)
	return stats, nil
}

// Batches lists non-deleted batches, newest first.
func (s *Service) Batches() ([]models.ImportBatch, error) {
	batches, err := s.batches.List(false)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(batches, func(i, j int) bool {
		return batches[j].ImportedAt.Before(batches[i].ImportedAt)
	})
	return batches, nil
}

func (s *Service) Batch(id uuid.UUID) (*models.ImportBatch, error) {
	return s.batches.GetByID(id)
}

// DeleteBatch soft-deletes a batch. Its snapshot is retained for audit; the
// batch just stops contributing to comparisons and trends.
func (s *Service) DeleteBatch(id uuid.UUID) error {
	return s.batches.SoftDelete(id)
}

// Comparison compares the two most recent non-deleted batches. With fewer
// than two it returns analytics.ErrInsufficientData, the recognized
// no-comparison state.
func (s *Service) Comparison() (analytics.DeltaReport, error) {
	batches, err := s.batches.List(false)
	if err != nil {
		return analytics.DeltaReport{}, err
	}
	sort.SliceStable(batches, func(i, j int) bool {
		return batches[i].ImportedAt.Before(batches[j].ImportedAt)
	})
	if len(batches) < 2 {
		return analytics.DeltaReport{}, analytics.ErrInsufficientData
	}
	prev, cur := batches[len(batches)-2], batches[len(batches)-1]

	statsByBatch, err := s.snapshots.GetMany([]uuid.UUID{prev.ID, cur.ID})
	if err != nil {
		return analytics.DeltaReport{}, err
	}
	prevStats, ok := statsByBatch[prev.ID]
	if !ok {
		return analytics.DeltaReport{}, analytics.ErrSnapshotUnavailable
	}
	curStats, ok := statsByBatch[cur.ID]
	if !ok {
		return analytics.DeltaReport{}, analytics.ErrSnapshotUnavailable
	}

	prevRefs, err := s.invoices.ListRefsByBatch(prev.ID)
	if err != nil {
		return analytics.DeltaReport{}, err
	}
	curRefs, err := s.invoices.ListRefsByBatch(cur.ID)
	if err != nil {
		return analytics.DeltaReport{}, err
	}

	report := analytics.Compare(
		analytics.ComparisonSide{Batch: prev, Invoices: prevRefs, Stats: prevStats},
		analytics.ComparisonSide{Batch: cur, Invoices: curRefs, Stats: curStats},
	)
	return report, nil
}

// TrendSeries extracts one metric's series over the recent batch window.
func (s *Service) TrendSeries(metric analytics.Metric, state string) (analytics.TrendSeries, error) {
	batches, statsByBatch, err := s.trendInputs()
	if err != nil {
		return analytics.TrendSeries{}, err
	}
	return analytics.Trend(batches, statsByBatch, metric, state, s.Trend)
}

// StateTrends builds the per-process-state series set.
func (s *Service) StateTrends() ([]analytics.TrendSeries, error) {
	batches, statsByBatch, err := s.trendInputs()
	if err != nil {
		return nil, err
	}
	return analytics.StateTrends(batches, statsByBatch, s.Trend)
}

func (s *Service) trendInputs() ([]models.ImportBatch, map[uuid.UUID]analytics.BatchStats, error) {
	batches, err := s.batches.List(false)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]uuid.UUID, 0, len(batches))
	for _, b := range batches {
		ids = append(ids, b.ID)
	}
	statsByBatch, err := s.snapshots.GetMany(ids)
	if err != nil {
		return nil, nil, err
	}
	return batches, statsByBatch, nil
}

// ListInvoices runs the filtered invoice query.
func (s *Service) ListInvoices(filter repository.InvoiceFilter) ([]models.InvoiceRecord, error) {
	return s.invoices.Search(filter)
}

// InvoicesForBucket translates an aging-bucket label into day bounds and
// runs the same filtered query a user-facing click expects.
func (s *Service) InvoicesForBucket(label string, filter repository.InvoiceFilter) ([]models.InvoiceRecord, error) {
	ageRange, err := analytics.ParseAgingLabel(label)
	if err != nil {
		return nil, err
	}
	filter.MinDays = &ageRange.MinDays
	filter.MaxDays = ageRange.MaxDays
	return s.invoices.Search(filter)
}

package handler

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"invoice-analytics-backend/internal/analytics"
	"invoice-analytics-backend/internal/logger"
	"invoice-analytics-backend/internal/models"
	"invoice-analytics-backend/internal/repository"
	service "invoice-analytics-backend/internal/services/dashboard"
)

type DashboardHandler struct {
	service *service.Service
}

func NewDashboardHandler(s *service.Service) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// UploadBatch accepts a CSV of invoice records, opens a batch, and processes
// the rows in the background.
func (h *DashboardHandler) UploadBatch(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	// Buffer the upload so the parse goroutine outlives the request body.
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}

	batch, err := h.service.CreateBatch(header.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	go h.processCSV(batch.ID, data)

	c.JSON(http.StatusAccepted, gin.H{
		"batch_id": batch.ID.String(),
		"status":   "processing",
	})
}

// processCSV parses invoice rows and finalizes the batch's snapshot.
// Expected columns: invoice number, supplier, amount, days old, process
// state, PO type. Malformed rows are skipped, never fatal.
func (h *DashboardHandler) processCSV(batchID uuid.UUID, data []byte) {
	log := logger.WithComponent("import")

	sample := data
	if len(sample) > 1024 {
		sample = sample[:1024]
	}

	csvReader := csv.NewReader(bytes.NewReader(data))
	csvReader.FieldsPerRecord = -1
	if !bytes.Contains(sample, []byte(",")) && bytes.Contains(sample, []byte("\t")) {
		csvReader.Comma = '\t'
	}

	// Skip header
	_, _ = csvReader.Read()

	count := 0
	var pending []models.InvoiceRecord

	flush := func() {
		if len(pending) == 0 {
			return
		}
		if err := h.service.IngestRecords(pending); err != nil {
			log.Error().Err(err).Str("batch_id", batchID.String()).Msg("insert failed")
		}
		pending = pending[:0]
	}

	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		if len(row) < 6 || strings.Join(row, "") == "" {
			continue
		}

		amount, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			continue
		}
		daysOld, err := strconv.Atoi(strings.TrimSpace(row[3]))
		if err != nil {
			continue
		}

		invoiceNumber := strings.TrimSpace(row[0])
		if invoiceNumber == "" {
			invoiceNumber = uuid.New().String()
		}

		pending = append(pending, models.InvoiceRecord{
			ID:            uuid.New(),
			BatchID:       batchID,
			InvoiceNumber: invoiceNumber,
			Supplier:      strings.TrimSpace(row[1]),
			Amount:        amount,
			DaysOld:       daysOld,
			ProcessState:  strings.TrimSpace(row[4]),
			POType:        analytics.NormalizePOType(row[5]),
			CreatedAt:     time.Now(),
		})
		count++

		if len(pending) >= 200 {
			flush()
			h.service.UpdateProgress(batchID, count)
		}
	}
	flush()

	if _, err := h.service.FinalizeBatch(batchID, count); err != nil {
		log.Error().Err(err).Str("batch_id", batchID.String()).Msg("finalize failed")
		return
	}
	log.Info().Str("batch_id", batchID.String()).Int("records", count).Msg("import complete")
}

func (h *DashboardHandler) ListBatches(c *gin.Context) {
	batches, err := h.service.Batches()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"batches": batches})
}

func (h *DashboardHandler) GetBatchProgress(c *gin.Context) {
	id, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}
	batch, err := h.service.Batch(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"processed_count": batch.ProcessedCount,
		"total":           batch.TotalRecords,
		"status":          batch.Status,
	})
}

func (h *DashboardHandler) GetBatchStats(c *gin.Context) {
	id, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}
	stats, err := h.service.Stats(id)
	if err != nil {
		if errors.Is(err, analytics.ErrSnapshotUnavailable) {
			c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not yet computed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// BackfillSnapshot computes a missing snapshot from stored records. A batch
// that already has one gets a conflict, not an overwrite.
func (h *DashboardHandler) BackfillSnapshot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}
	stats, err := h.service.BackfillSnapshot(id)
	if err != nil {
		if errors.Is(err, analytics.ErrDuplicateSnapshot) {
			c.JSON(http.StatusConflict, gin.H{"error": "snapshot already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) DeleteBatch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}
	if err := h.service.DeleteBatch(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "batch deleted"})
}

// GetComparison reports the delta between the two most recent batches.
// Too few batches is an empty state, not an error.
func (h *DashboardHandler) GetComparison(c *gin.Context) {
	report, err := h.service.Comparison()
	if err != nil {
		if errors.Is(err, analytics.ErrInsufficientData) || errors.Is(err, analytics.ErrSnapshotUnavailable) {
			c.JSON(http.StatusOK, gin.H{"available": false, "reason": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": true, "report": report})
}

func (h *DashboardHandler) GetTrend(c *gin.Context) {
	metric := analytics.Metric(c.DefaultQuery("metric", string(analytics.MetricBacklog)))
	state := c.Query("state")
	if metric == analytics.MetricState && state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state parameter required for state metric"})
		return
	}

	series, err := h.service.TrendSeries(metric, state)
	if err != nil {
		if errors.Is(err, analytics.ErrInsufficientData) || errors.Is(err, analytics.ErrSnapshotUnavailable) {
			c.JSON(http.StatusOK, gin.H{"available": false, "reason": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": true, "series": series})
}

func (h *DashboardHandler) GetStateTrends(c *gin.Context) {
	series, err := h.service.StateTrends()
	if err != nil {
		if errors.Is(err, analytics.ErrInsufficientData) || errors.Is(err, analytics.ErrSnapshotUnavailable) {
			c.JSON(http.StatusOK, gin.H{"available": false, "reason": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": true, "series": series})
}

func (h *DashboardHandler) ListInvoices(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}
	records, err := h.service.ListInvoices(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": records, "count": len(records)})
}

// ListInvoicesForBucket turns an aging-bucket label from a chart click into
// the equivalent day-range query.
func (h *DashboardHandler) ListInvoicesForBucket(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}
	records, err := h.service.InvoicesForBucket(c.Param("bucket"), filter)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidBucketLabel) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": records, "count": len(records)})
}

func (h *DashboardHandler) parseFilter(c *gin.Context) (repository.InvoiceFilter, bool) {
	filter := repository.InvoiceFilter{
		State:  c.Query("state"),
		Vendor: c.Query("vendor"),
		POType: c.Query("po_type"),
	}
	if raw := c.Query("batch_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch_id"})
			return filter, false
		}
		filter.BatchID = &id
	}
	if raw := c.Query("min_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_days"})
			return filter, false
		}
		filter.MinDays = &n
	}
	if raw := c.Query("max_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_days"})
			return filter, false
		}
		filter.MaxDays = &n
	}
	return filter, true
}

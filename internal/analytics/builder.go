package analytics

import (
	"sort"

	"github.com/google/uuid"

	"invoice-analytics-backend/internal/models"
)

// VendorRank selects the ordering used for the top-vendor list.
type VendorRank int

const (
	RankByValue VendorRank = iota
	RankByCount
)

// TopVendorLimit bounds the top-vendor list. Suppliers past the bound are
// omitted, not merged into an "other" row.
const TopVendorLimit = 10

// BuildBatchStats folds a batch's records into its aggregate snapshot.
// Pure: the same record set always yields an identical result. Records that
// fail a bucketing rule still land in the totals via the Unknown buckets.
func BuildBatchStats(batchID uuid.UUID, records []models.InvoiceRecord) BatchStats {
	return BuildBatchStatsRanked(batchID, records, RankByValue)
}

// BuildBatchStatsRanked is BuildBatchStats with a caller-chosen vendor
// ranking mode.
func BuildBatchStatsRanked(batchID uuid.UUID, records []models.InvoiceRecord, rank VendorRank) BatchStats {
	stats := BatchStats{
		BatchID:            batchID,
		ProcessStateCounts: map[string]BucketTally{},
		POBreakdown:        map[string]BucketTally{},
	}
	if len(records) == 0 {
		return stats
	}

	aging := map[int]*AgingBucket{}
	for _, min := range AgingBucketMins() {
		aging[min] = &AgingBucket{Label: AgingBucketLabel(min), MinDays: min}
	}
	vendors := map[string]*VendorTotal{}

	for _, rec := range records {
		stats.TotalInvoices++
		stats.TotalValue += rec.Amount

		if IsReadyForPayment(rec.ProcessState) {
			stats.ReadyForPaymentCount++
			stats.ReadyForPaymentValue += rec.Amount
		} else {
			stats.BacklogCount++
			stats.BacklogValue += rec.Amount
		}

		bucket := aging[AgingBucketMin(rec.DaysOld)]
		bucket.Count++
		bucket.Value += rec.Amount

		if _, _, ok := ParseProcessState(rec.ProcessState); ok {
			tally := stats.ProcessStateCounts[rec.ProcessState]
			tally.Count++
			tally.Value += rec.Amount
			stats.ProcessStateCounts[rec.ProcessState] = tally
		} else {
			stats.UnknownStateCount++
			stats.UnknownStateValue += rec.Amount
		}

		poType := NormalizePOType(rec.POType)
		po := stats.POBreakdown[poType]
		po.Count++
		po.Value += rec.Amount
		stats.POBreakdown[poType] = po

		v, ok := vendors[rec.Supplier]
		if !ok {
			v = &VendorTotal{Supplier: rec.Supplier}
			vendors[rec.Supplier] = v
		}
		v.Count++
		v.Value += rec.Amount
	}

	// Fixed axis: every bucket appears even at zero so chart consumers get a
	// stable x-axis.
	for _, min := range AgingBucketMins() {
		stats.AgingBreakdown = append(stats.AgingBreakdown, *aging[min])
	}

	stats.TopVendors = rankVendors(vendors, rank, TopVendorLimit)
	return stats
}

func rankVendors(vendors map[string]*VendorTotal, rank VendorRank, limit int) []VendorTotal {
	ranked := make([]VendorTotal, 0, len(vendors))
	for _, v := range vendors {
		ranked = append(ranked, *v)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		switch rank {
		case RankByCount:
			if a.Count != b.Count {
				return a.Count > b.Count
			}
		default:
			if a.Value != b.Value {
				return a.Value > b.Value
			}
		}
		return a.Supplier < b.Supplier
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

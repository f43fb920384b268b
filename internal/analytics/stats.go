package analytics

import "github.com/google/uuid"

// BucketTally is one count+value cell of a breakdown.
type BucketTally struct {
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

// AgingBucket is one 30-day slice of the aging breakdown.
type AgingBucket struct {
	Label   string  `json:"label"`
	MinDays int     `json:"min_days"`
	Count   int     `json:"count"`
	Value   float64 `json:"value"`
}

// VendorTotal is one row of the top-vendor ranking.
type VendorTotal struct {
	Supplier string  `json:"supplier"`
	Count    int     `json:"count"`
	Value    float64 `json:"value"`
}

// BatchStats is the immutable aggregate snapshot of one import batch.
// It is computed once by the builder and never recomputed by consumers;
// every breakdown partitions the batch's invoice set, so summing any
// breakdown's counts reproduces TotalInvoices.
type BatchStats struct {
	BatchID uuid.UUID `json:"batch_id"`

	TotalInvoices int     `json:"total_invoices"`
	TotalValue    float64 `json:"total_value"`

	BacklogCount int     `json:"backlog_count"`
	BacklogValue float64 `json:"backlog_value"`

	ReadyForPaymentCount int     `json:"ready_for_payment_count"`
	ReadyForPaymentValue float64 `json:"ready_for_payment_value"`

	AgingBreakdown []AgingBucket `json:"aging_breakdown"`

	// ProcessStateCounts keys are raw state labels. Display ordering by
	// numeric prefix is a consumer concern; the map stays unordered here.
	ProcessStateCounts map[string]BucketTally `json:"process_state_counts"`

	// UnknownStateCount covers records whose label failed to parse. They are
	// in the totals but excluded from the numbered-state breakdown.
	UnknownStateCount int     `json:"unknown_state_count"`
	UnknownStateValue float64 `json:"unknown_state_value"`

	POBreakdown map[string]BucketTally `json:"po_breakdown"`

	TopVendors []VendorTotal `json:"top_vendors"`
}

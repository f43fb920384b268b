package analytics

import (
	"sort"

	"github.com/google/uuid"

	"invoice-analytics-backend/internal/models"
)

// InvoiceRef is the slice of an invoice the comparison needs: its identity,
// its value and the state it sat in. ID is the stable invoice number, the
// identity that survives across batches; row keys do not.
type InvoiceRef struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
	State string  `json:"state"`
}

// ComparisonSide bundles one batch with its invoice set and snapshot.
type ComparisonSide struct {
	Batch    models.ImportBatch
	Invoices []InvoiceRef
	Stats    BatchStats
}

// StateChange is one row of the per-state delta. Change is the net movement;
// NewCount and ResolvedCount break out the two real flows a net-zero row can
// hide. Zero-change rows are retained, filtering is a presentation concern.
type StateChange struct {
	State         string `json:"state"`
	PreviousCount int    `json:"previous_count"`
	CurrentCount  int    `json:"current_count"`
	Change        int    `json:"change"`
	NewCount      int    `json:"new_count"`
	ResolvedCount int    `json:"resolved_count"`
}

// DeltaReport is the batch-over-batch comparison. Derived, never stored.
type DeltaReport struct {
	PreviousBatchID uuid.UUID `json:"previous_batch_id"`
	CurrentBatchID  uuid.UUID `json:"current_batch_id"`
	PreviousLabel   string    `json:"previous_label"`
	CurrentLabel    string    `json:"current_label"`

	PreviousTotalCount int     `json:"previous_total_count"`
	CurrentTotalCount  int     `json:"current_total_count"`
	PreviousTotalValue float64 `json:"previous_total_value"`
	CurrentTotalValue  float64 `json:"current_total_value"`

	ResolvedCount int      `json:"resolved_count"`
	ResolvedValue float64  `json:"resolved_value"`
	ResolvedIDs   []string `json:"resolved_ids"`

	NewCount int      `json:"new_count"`
	NewValue float64  `json:"new_value"`
	NewIDs   []string `json:"new_ids"`

	StateChanges []StateChange `json:"state_changes"`
}

// Compare computes the delta between two consecutive batches. Resolved and
// new sets come from the identifier difference and their values are summed
// from the member records themselves, not estimated from snapshot totals.
func Compare(prev, cur ComparisonSide) DeltaReport {
	report := DeltaReport{
		PreviousBatchID:    prev.Batch.ID,
		CurrentBatchID:     cur.Batch.ID,
		PreviousLabel:      prev.Batch.Label(),
		CurrentLabel:       cur.Batch.Label(),
		PreviousTotalCount: prev.Stats.TotalInvoices,
		CurrentTotalCount:  cur.Stats.TotalInvoices,
		PreviousTotalValue: prev.Stats.TotalValue,
		CurrentTotalValue:  cur.Stats.TotalValue,
	}

	prevByID := make(map[string]InvoiceRef, len(prev.Invoices))
	for _, ref := range prev.Invoices {
		prevByID[ref.ID] = ref
	}
	curByID := make(map[string]InvoiceRef, len(cur.Invoices))
	for _, ref := range cur.Invoices {
		curByID[ref.ID] = ref
	}

	newPerState := map[string]int{}
	resolvedPerState := map[string]int{}

	for _, ref := range prev.Invoices {
		if _, ok := curByID[ref.ID]; ok {
			continue
		}
		report.ResolvedCount++
		report.ResolvedValue += ref.Value
		report.ResolvedIDs = append(report.ResolvedIDs, ref.ID)
		if _, _, ok := ParseProcessState(ref.State); ok {
			resolvedPerState[ref.State]++
		}
	}
	for _, ref := range cur.Invoices {
		if _, ok := prevByID[ref.ID]; ok {
			continue
		}
		report.NewCount++
		report.NewValue += ref.Value
		report.NewIDs = append(report.NewIDs, ref.ID)
		if _, _, ok := ParseProcessState(ref.State); ok {
			newPerState[ref.State]++
		}
	}
	sort.Strings(report.ResolvedIDs)
	sort.Strings(report.NewIDs)

	states := map[string]struct{}{}
	for s := range prev.Stats.ProcessStateCounts {
		states[s] = struct{}{}
	}
	for s := range cur.Stats.ProcessStateCounts {
		states[s] = struct{}{}
	}

	for state := range states {
		prevCount := prev.Stats.ProcessStateCounts[state].Count
		curCount := cur.Stats.ProcessStateCounts[state].Count
		report.StateChanges = append(report.StateChanges, StateChange{
			State:         state,
			PreviousCount: prevCount,
			CurrentCount:  curCount,
			Change:        curCount - prevCount,
			NewCount:      newPerState[state],
			ResolvedCount: resolvedPerState[state],
		})
	}
	sort.Slice(report.StateChanges, func(i, j int) bool {
		a, b := report.StateChanges[i], report.StateChanges[j]
		ka, kb := StateSortKey(a.State), StateSortKey(b.State)
		if ka != kb {
			return ka < kb
		}
		return a.State < b.State
	})

	return report
}

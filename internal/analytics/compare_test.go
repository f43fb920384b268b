package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"invoice-analytics-backend/internal/models"
)

func batch(name string, importedAt time.Time) models.ImportBatch {
	return models.ImportBatch{
		ID:         uuid.New(),
		Filename:   name,
		ImportedAt: importedAt,
	}
}

func side(b models.ImportBatch, records ...models.InvoiceRecord) ComparisonSide {
	refs := make([]InvoiceRef, 0, len(records))
	for _, rec := range records {
		refs = append(refs, InvoiceRef{ID: rec.InvoiceNumber, Value: rec.Amount, State: rec.ProcessState})
	}
	return ComparisonSide{Batch: b, Invoices: refs, Stats: BuildBatchStats(b.ID, records)}
}

func stateChange(t *testing.T, report DeltaReport, state string) StateChange {
	t.Helper()
	for _, row := range report.StateChanges {
		if row.State == state {
			return row
		}
	}
	t.Fatalf("no state change row for %q", state)
	return StateChange{}
}

// The canonical two-batch scenario: I1 resolved, I3 new, I2 carried over.
func TestCompareTwoBatches(t *testing.T) {
	t.Parallel()

	day1 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	batchA := batch("day1.csv", day1)
	batchB := batch("day2.csv", day1.AddDate(0, 0, 1))

	i1 := record("I1", "Acme", 100, 10, "01 - Received", "PO")
	i2 := record("I2", "Globex", 200, 40, "08 - Approved", "PO")
	i3 := record("I3", "Initech", 50, 2, "01 - Received", "Non-PO")

	report := Compare(side(batchA, i1, i2), side(batchB, i2, i3))

	require.Equal(t, batchA.ID, report.PreviousBatchID)
	require.Equal(t, batchB.ID, report.CurrentBatchID)
	require.Equal(t, 2, report.PreviousTotalCount)
	require.Equal(t, 2, report.CurrentTotalCount)

	require.Equal(t, 1, report.ResolvedCount)
	require.InDelta(t, 100, report.ResolvedValue, valueTolerance)
	require.Equal(t, []string{"I1"}, report.ResolvedIDs)

	require.Equal(t, 1, report.NewCount)
	require.InDelta(t, 50, report.NewValue, valueTolerance)
	require.Equal(t, []string{"I3"}, report.NewIDs)

	// State "01": I1 resolved, I3 new. Net zero, but the row survives and
	// the supplementary counts expose both movements.
	row := stateChange(t, report, "01 - Received")
	require.Equal(t, 1, row.PreviousCount)
	require.Equal(t, 1, row.CurrentCount)
	require.Equal(t, 0, row.Change)
	require.Equal(t, 1, row.NewCount)
	require.Equal(t, 1, row.ResolvedCount)

	row = stateChange(t, report, "08 - Approved")
	require.Equal(t, 1, row.PreviousCount)
	require.Equal(t, 1, row.CurrentCount)
	require.Equal(t, 0, row.Change)
	require.Equal(t, 0, row.NewCount)
	require.Equal(t, 0, row.ResolvedCount)
}

func TestCompareIdenticalBatchesIsAllZero(t *testing.T) {
	t.Parallel()

	batchA := batch("a.csv", time.Now())
	batchB := batch("b.csv", time.Now().Add(time.Hour))
	records := []models.InvoiceRecord{
		record("I1", "Acme", 100, 10, "01 - Received", "PO"),
		record("I2", "Globex", 200, 40, "08 - Approved", "PO"),
	}

	report := Compare(side(batchA, records...), side(batchB, records...))

	require.Zero(t, report.ResolvedCount)
	require.Zero(t, report.ResolvedValue)
	require.Empty(t, report.ResolvedIDs)
	require.Zero(t, report.NewCount)
	require.Zero(t, report.NewValue)
	require.Empty(t, report.NewIDs)
	for _, row := range report.StateChanges {
		require.Zero(t, row.Change, "state %s", row.State)
		require.Zero(t, row.NewCount, "state %s", row.State)
		require.Zero(t, row.ResolvedCount, "state %s", row.State)
	}
}

func TestCompareSetConservation(t *testing.T) {
	t.Parallel()

	batchA := batch("a.csv", time.Now())
	batchB := batch("b.csv", time.Now().Add(time.Hour))

	prev := []models.InvoiceRecord{
		record("I1", "Acme", 10, 1, "01 - Received", "PO"),
		record("I2", "Acme", 20, 1, "01 - Received", "PO"),
		record("I3", "Acme", 30, 1, "02 - Coded", "PO"),
	}
	cur := []models.InvoiceRecord{
		record("I3", "Acme", 30, 2, "02 - Coded", "PO"),
		record("I4", "Acme", 40, 1, "03 - Posted", "PO"),
	}

	report := Compare(side(batchA, prev...), side(batchB, cur...))

	// |resolved| = |P-C|, |new| = |C-P|.
	require.Equal(t, 2, report.ResolvedCount)
	require.Equal(t, []string{"I1", "I2"}, report.ResolvedIDs)
	require.InDelta(t, 30, report.ResolvedValue, valueTolerance)
	require.Equal(t, 1, report.NewCount)
	require.Equal(t, []string{"I4"}, report.NewIDs)
	require.InDelta(t, 40, report.NewValue, valueTolerance)

	// Net total movement equals new minus resolved.
	require.Equal(t, report.CurrentTotalCount-report.PreviousTotalCount,
		report.NewCount-report.ResolvedCount)
}

func TestCompareStateRowsOrderedAndComplete(t *testing.T) {
	t.Parallel()

	batchA := batch("a.csv", time.Now())
	batchB := batch("b.csv", time.Now().Add(time.Hour))

	prev := []models.InvoiceRecord{
		record("I1", "Acme", 10, 1, "08 - Approved", "PO"),
		record("I2", "Acme", 20, 1, "02 - Coded", "PO"),
	}
	cur := []models.InvoiceRecord{
		record("I3", "Acme", 30, 1, "01 - Received", "PO"),
	}

	report := Compare(side(batchA, prev...), side(batchB, cur...))

	// Union of labels from either side, ordered by numeric prefix.
	require.Len(t, report.StateChanges, 3)
	require.Equal(t, "01 - Received", report.StateChanges[0].State)
	require.Equal(t, "02 - Coded", report.StateChanges[1].State)
	require.Equal(t, "08 - Approved", report.StateChanges[2].State)

	// A state present only in the previous batch still gets a row.
	require.Equal(t, -1, report.StateChanges[2].Change)
	// A state present only in the current batch counts its new arrival.
	require.Equal(t, 1, report.StateChanges[0].Change)
	require.Equal(t, 1, report.StateChanges[0].NewCount)
}

func TestCompareEmptySides(t *testing.T) {
	t.Parallel()

	batchA := batch("a.csv", time.Now())
	batchB := batch("b.csv", time.Now().Add(time.Hour))

	report := Compare(side(batchA), side(batchB))
	require.Zero(t, report.ResolvedCount)
	require.Zero(t, report.NewCount)
	require.Empty(t, report.StateChanges)
}

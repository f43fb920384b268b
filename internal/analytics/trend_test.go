package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"invoice-analytics-backend/internal/models"
)

func trendFixture(backlogs ...int) ([]models.ImportBatch, map[uuid.UUID]BatchStats) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	batches := make([]models.ImportBatch, 0, len(backlogs))
	statsByBatch := map[uuid.UUID]BatchStats{}
	for i, backlog := range backlogs {
		b := batch("", base.AddDate(0, 0, i))
		batches = append(batches, b)
		statsByBatch[b.ID] = BatchStats{
			BatchID:            b.ID,
			TotalInvoices:      backlog,
			BacklogCount:       backlog,
			ProcessStateCounts: map[string]BucketTally{},
		}
	}
	return batches, statsByBatch
}

func TestTrendWindowBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		backlogs []int
		points   int
		change   int
	}{
		{name: "two batches", backlogs: []int{3, 7}, points: 2, change: 4},
		{name: "exactly window", backlogs: []int{1, 2, 3, 4, 5}, points: 5, change: 4},
		{name: "over window keeps last five", backlogs: []int{9, 1, 2, 3, 4, 5}, points: 5, change: 4},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			batches, statsByBatch := trendFixture(tc.backlogs...)
			series, err := Trend(batches, statsByBatch, MetricBacklog, "", Config{})
			require.NoError(t, err)
			require.Len(t, series.Points, tc.points)
			require.Equal(t, tc.change, series.Change)
		})
	}
}

func TestTrendInsufficientData(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1} {
		backlogs := make([]int, n)
		batches, statsByBatch := trendFixture(backlogs...)
		_, err := Trend(batches, statsByBatch, MetricBacklog, "", Config{})
		require.ErrorIs(t, err, ErrInsufficientData, "%d batches", n)
	}
}

func TestTrendExcludesDeletedBatches(t *testing.T) {
	t.Parallel()

	batches, statsByBatch := trendFixture(10, 20, 30)
	batches[1].IsDeleted = true

	series, err := Trend(batches, statsByBatch, MetricBacklog, "", Config{})
	require.NoError(t, err)
	require.Len(t, series.Points, 2)
	require.Equal(t, 10, series.Points[0].Value)
	require.Equal(t, 30, series.Points[1].Value)

	// Deleting all but one drops below the usable floor.
	batches[0].IsDeleted = true
	_, err = Trend(batches, statsByBatch, MetricBacklog, "", Config{})
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestTrendMissingSnapshot(t *testing.T) {
	t.Parallel()

	batches, statsByBatch := trendFixture(1, 2, 3)
	delete(statsByBatch, batches[2].ID)

	_, err := Trend(batches, statsByBatch, MetricBacklog, "", Config{})
	require.ErrorIs(t, err, ErrSnapshotUnavailable)
}

func TestTrendResortsFetchOrder(t *testing.T) {
	t.Parallel()

	batches, statsByBatch := trendFixture(1, 2, 3)
	shuffled := []models.ImportBatch{batches[2], batches[0], batches[1]}

	series, err := Trend(shuffled, statsByBatch, MetricBacklog, "", Config{})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, pointValues(series))
}

func TestTrendCustomWindow(t *testing.T) {
	t.Parallel()

	batches, statsByBatch := trendFixture(1, 2, 3, 4)
	series, err := Trend(batches, statsByBatch, MetricBacklog, "", Config{Window: 2})
	require.NoError(t, err)
	require.Equal(t, []int{3, 4}, pointValues(series))
	require.Equal(t, 1, series.Change)
}

func TestTrendStateMetricDefaultsMissingStates(t *testing.T) {
	t.Parallel()

	batches, statsByBatch := trendFixture(0, 0, 0)
	s0 := statsByBatch[batches[0].ID]
	s0.ProcessStateCounts["01 - Received"] = BucketTally{Count: 4, Value: 400}
	statsByBatch[batches[0].ID] = s0
	s2 := statsByBatch[batches[2].ID]
	s2.ProcessStateCounts["01 - Received"] = BucketTally{Count: 1, Value: 100}
	statsByBatch[batches[2].ID] = s2

	series, err := Trend(batches, statsByBatch, MetricState, "01 - Received", Config{})
	require.NoError(t, err)
	// The middle batch is missing the state: it contributes a zero point,
	// never a dropped point.
	require.Equal(t, []int{4, 0, 1}, pointValues(series))
	require.Equal(t, -3, series.Change)
}

func TestTrendUnknownMetric(t *testing.T) {
	t.Parallel()

	batches, statsByBatch := trendFixture(1, 2)
	_, err := Trend(batches, statsByBatch, Metric("bogus"), "", Config{})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInsufficientData)
}

func TestStateTrendsDiscoveryAndPruning(t *testing.T) {
	t.Parallel()

	batches, statsByBatch := trendFixture(0, 0)
	s0 := statsByBatch[batches[0].ID]
	s0.ProcessStateCounts["01 - Received"] = BucketTally{Count: 2}
	s0.ProcessStateCounts["03 - Posted"] = BucketTally{Count: 0}
	statsByBatch[batches[0].ID] = s0
	s1 := statsByBatch[batches[1].ID]
	s1.ProcessStateCounts["01 - Received"] = BucketTally{Count: 5}
	s1.ProcessStateCounts["02 - Coded"] = BucketTally{Count: 1}
	statsByBatch[batches[1].ID] = s1

	series, err := StateTrends(batches, statsByBatch, Config{})
	require.NoError(t, err)

	// "03 - Posted" never had a value and never changed: no widget.
	require.Len(t, series, 2)
	require.Equal(t, "01 - Received", series[0].State)
	require.Equal(t, []int{2, 5}, pointValues(series[0]))
	require.Equal(t, 3, series[0].Change)
	require.Equal(t, "02 - Coded", series[1].State)
	require.Equal(t, []int{0, 1}, pointValues(series[1]))
	require.Equal(t, 1, series[1].Change)

	// Every series has exactly one point per selected batch.
	for _, s := range series {
		require.Len(t, s.Points, 2)
	}
}

func TestStateTrendsInsufficientData(t *testing.T) {
	t.Parallel()

	batches, statsByBatch := trendFixture(1)
	_, err := StateTrends(batches, statsByBatch, Config{})
	require.ErrorIs(t, err, ErrInsufficientData)
}

func pointValues(series TrendSeries) []int {
	values := make([]int, 0, len(series.Points))
	for _, p := range series.Points {
		values = append(values, p.Value)
	}
	return values
}

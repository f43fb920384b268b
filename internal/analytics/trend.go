package analytics

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"invoice-analytics-backend/internal/models"
)

// Metric selects which snapshot field a trend tracks.
type Metric string

const (
	MetricBacklog         Metric = "backlog"
	MetricReadyForPayment Metric = "ready_for_payment"
	// MetricState tracks one process state's count; the state label rides
	// alongside the selector.
	MetricState Metric = "state"
)

// Config carries the trend policy knobs. The window is an external policy
// constant, not a computed value; tests exercise the boundaries by overriding
// it.
type Config struct {
	Window int
}

// DefaultWindow is the documented default: the five most recent batches.
const DefaultWindow = 5

func (c Config) window() int {
	if c.Window <= 0 {
		return DefaultWindow
	}
	return c.Window
}

// TrendPoint is one batch's value on the series.
type TrendPoint struct {
	BatchID uuid.UUID `json:"batch_id"`
	Label   string    `json:"label"`
	Value   int       `json:"value"`
}

// TrendSeries is a bounded, ordered series of one metric across recent
// batches, oldest first. Change is last minus first.
type TrendSeries struct {
	Metric Metric       `json:"metric"`
	State  string       `json:"state,omitempty"`
	Points []TrendPoint `json:"points"`
	Change int          `json:"change"`
}

// Trend extracts a metric series over the most recent non-deleted batches.
// The input batch order is not trusted: batches are re-sorted by imported-at
// before windowing, with ties keeping insertion order. Returns
// ErrInsufficientData for fewer than two usable batches and
// ErrSnapshotUnavailable when a selected batch has no snapshot.
func Trend(batches []models.ImportBatch, statsByBatch map[uuid.UUID]BatchStats, metric Metric, state string, cfg Config) (TrendSeries, error) {
	selected, err := selectWindow(batches, statsByBatch, cfg.window())
	if err != nil {
		return TrendSeries{}, err
	}

	series := TrendSeries{Metric: metric, State: state}
	for _, b := range selected {
		value, err := metricValue(statsByBatch[b.ID], metric, state)
		if err != nil {
			return TrendSeries{}, err
		}
		series.Points = append(series.Points, TrendPoint{BatchID: b.ID, Label: b.Label(), Value: value})
	}
	series.Change = series.Points[len(series.Points)-1].Value - series.Points[0].Value
	return series, nil
}

// StateTrends builds one series per process-state label seen across the
// selected snapshots. A batch missing a state contributes a zero point, so
// every series has exactly one point per batch. Labels whose series is
// entirely zero with zero change are dropped.
func StateTrends(batches []models.ImportBatch, statsByBatch map[uuid.UUID]BatchStats, cfg Config) ([]TrendSeries, error) {
	selected, err := selectWindow(batches, statsByBatch, cfg.window())
	if err != nil {
		return nil, err
	}

	states := map[string]struct{}{}
	for _, b := range selected {
		for s := range statsByBatch[b.ID].ProcessStateCounts {
			states[s] = struct{}{}
		}
	}
	labels := make([]string, 0, len(states))
	for s := range states {
		labels = append(labels, s)
	}
	sort.Slice(labels, func(i, j int) bool {
		ka, kb := StateSortKey(labels[i]), StateSortKey(labels[j])
		if ka != kb {
			return ka < kb
		}
		return labels[i] < labels[j]
	})

	var out []TrendSeries
	for _, state := range labels {
		series := TrendSeries{Metric: MetricState, State: state}
		allZero := true
		for _, b := range selected {
			value := statsByBatch[b.ID].ProcessStateCounts[state].Count
			if value != 0 {
				allZero = false
			}
			series.Points = append(series.Points, TrendPoint{BatchID: b.ID, Label: b.Label(), Value: value})
		}
		series.Change = series.Points[len(series.Points)-1].Value - series.Points[0].Value
		if allZero && series.Change == 0 {
			continue
		}
		out = append(out, series)
	}
	return out, nil
}

// selectWindow filters out soft-deleted batches, re-sorts ascending by
// imported-at and keeps the last window entries. Every selected batch must
// have a snapshot.
func selectWindow(batches []models.ImportBatch, statsByBatch map[uuid.UUID]BatchStats, window int) ([]models.ImportBatch, error) {
	live := make([]models.ImportBatch, 0, len(batches))
	for _, b := range batches {
		if !b.IsDeleted {
			live = append(live, b)
		}
	}
	sort.SliceStable(live, func(i, j int) bool {
		return live[i].ImportedAt.Before(live[j].ImportedAt)
	})
	if len(live) > window {
		live = live[len(live)-window:]
	}
	if len(live) < 2 {
		return nil, ErrInsufficientData
	}
	for _, b := range live {
		if _, ok := statsByBatch[b.ID]; !ok {
			return nil, fmt.Errorf("batch %s: %w", b.ID, ErrSnapshotUnavailable)
		}
	}
	return live, nil
}

func metricValue(stats BatchStats, metric Metric, state string) (int, error) {
	switch metric {
	case MetricBacklog:
		return stats.BacklogCount, nil
	case MetricReadyForPayment:
		return stats.ReadyForPaymentCount, nil
	case MetricState:
		return stats.ProcessStateCounts[state].Count, nil
	default:
		return 0, fmt.Errorf("unknown metric %q", metric)
	}
}

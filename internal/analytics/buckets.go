package analytics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PO classification values. Anything else coming off the wire is coerced to
// POTypeUnknown, never dropped.
const (
	POTypePO      = "PO"
	POTypeNonPO   = "Non-PO"
	POTypeUnknown = "Unknown"
)

const (
	// AgingBucketSize is the width of each aging bucket in days.
	AgingBucketSize = 30
	// MaxAgingBucketMin is the lower bound of the open-ended final bucket.
	MaxAgingBucketMin = 360
)

var stateLabelRe = regexp.MustCompile(`^(\d+)\s*-\s*(.+)$`)

// AgingBucketMin maps an invoice age to the lower bound of its bucket.
// Negative ages clamp to the first bucket; everything at or past 360 days
// merges into the open-ended bucket.
func AgingBucketMin(daysOld int) int {
	if daysOld < 0 {
		return 0
	}
	min := (daysOld / AgingBucketSize) * AgingBucketSize
	if min > MaxAgingBucketMin {
		return MaxAgingBucketMin
	}
	return min
}

// AgingBucketLabel renders a bucket's lower bound as its display label:
// "0-30", "30-60", ... and "360+" for the final bucket.
func AgingBucketLabel(minDays int) string {
	if minDays >= MaxAgingBucketMin {
		return fmt.Sprintf("%d+", MaxAgingBucketMin)
	}
	return fmt.Sprintf("%d-%d", minDays, minDays+AgingBucketSize)
}

// AgingBucketMins returns the fixed bucket axis, lower bounds ascending.
func AgingBucketMins() []int {
	mins := make([]int, 0, MaxAgingBucketMin/AgingBucketSize+1)
	for m := 0; m <= MaxAgingBucketMin; m += AgingBucketSize {
		mins = append(mins, m)
	}
	return mins
}

// ParseProcessState splits a process-state label of the form
// "<number> - <description>". ok is false for anything that does not match;
// such records belong to the synthetic unknown bucket.
func ParseProcessState(label string) (prefix int, description string, ok bool) {
	m := stateLabelRe.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return 0, "", false
	}
	prefix, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return prefix, strings.TrimSpace(m[2]), true
}

// StateSortKey orders state labels by their leading numeric prefix for
// display; unparseable labels sort after every numbered state.
func StateSortKey(label string) int {
	prefix, _, ok := ParseProcessState(label)
	if !ok {
		return 1 << 30
	}
	return prefix
}

// IsReadyForPayment reports whether a process-state label is the terminal
// ready-for-payment state. The numeric prefix is customer data, so only the
// description is trusted.
func IsReadyForPayment(label string) bool {
	_, desc, ok := ParseProcessState(label)
	if !ok {
		return false
	}
	return strings.EqualFold(desc, "ready for payment")
}

// NormalizePOType coerces a raw PO classification to one of the three fixed
// values.
func NormalizePOType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "po":
		return POTypePO
	case "non-po", "non po", "nonpo":
		return POTypeNonPO
	default:
		return POTypeUnknown
	}
}

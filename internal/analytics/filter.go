package analytics

import (
	"fmt"
	"strconv"
	"strings"
)

// AgeRange is the day-range predicate a bucket label translates into. A nil
// MaxDays means the range is open-ended. Bounds are inclusive.
type AgeRange struct {
	MinDays int  `json:"min_days"`
	MaxDays *int `json:"max_days,omitempty"`
}

// ParseAgingLabel translates an aging-bucket label back into a filter
// predicate. "A-B" buckets use an exclusive upper bound, so the inclusive
// filter bound is B-1; "N+" has no upper bound. Malformed labels fail with
// ErrInvalidBucketLabel so a click never falls through to an unfiltered view.
func ParseAgingLabel(label string) (AgeRange, error) {
	label = strings.TrimSpace(label)

	if strings.HasSuffix(label, "+") {
		min, err := strconv.Atoi(strings.TrimSuffix(label, "+"))
		if err != nil || min < 0 {
			return AgeRange{}, fmt.Errorf("%w: %q", ErrInvalidBucketLabel, label)
		}
		return AgeRange{MinDays: min}, nil
	}

	lo, hi, ok := strings.Cut(label, "-")
	if !ok {
		return AgeRange{}, fmt.Errorf("%w: %q", ErrInvalidBucketLabel, label)
	}
	min, err := strconv.Atoi(lo)
	if err != nil || min < 0 {
		return AgeRange{}, fmt.Errorf("%w: %q", ErrInvalidBucketLabel, label)
	}
	upper, err := strconv.Atoi(hi)
	if err != nil || upper <= min {
		return AgeRange{}, fmt.Errorf("%w: %q", ErrInvalidBucketLabel, label)
	}
	max := upper - 1
	return AgeRange{MinDays: min, MaxDays: &max}, nil
}

package analytics

import "errors"

var (
	// ErrDuplicateSnapshot is returned on a second write for the same batch.
	// Snapshots are append-only; the losing writer is rejected, never merged.
	ErrDuplicateSnapshot = errors.New("snapshot already exists for batch")

	// ErrInvalidBucketLabel is returned for a bucket label that cannot be
	// translated into a day-range filter.
	ErrInvalidBucketLabel = errors.New("invalid bucket label")

	// ErrInsufficientData marks the recognized empty state: fewer than two
	// usable batches for a comparison or trend. Not a failure.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrSnapshotUnavailable means a selected batch has no backfilled stats.
	ErrSnapshotUnavailable = errors.New("snapshot unavailable")
)

package loader

import (
	"errors"
	"fmt"
)

// ErrCountUnavailable is returned when the count endpoint fails or reports
// zero rows. Batched strategies cannot plan without a total, so this aborts
// the load before any batch request is issued.
var ErrCountUnavailable = errors.New("row count unavailable")

// ErrUnknownStrategy is returned for a strategy the loader does not implement.
var ErrUnknownStrategy = errors.New("unknown load strategy")

// BatchError reports a failed batch request. It aborts the entire load; no
// partial dataset is ever committed.
type BatchError struct {
	BatchIndex int
	Offset     int
	Limit      int
	Err        error
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d (offset %d, limit %d) failed: %v",
		e.BatchIndex, e.Offset, e.Limit, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *BatchError) Unwrap() error {
	return e.Err
}

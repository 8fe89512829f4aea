// Package render materializes the visible window of rows onto a host display
// surface, skipping all work when the window has not moved.
package render

import (
	"github.com/rs/zerolog"

	"github.com/rowview/rowview/pkg/api"
	"github.com/rowview/rowview/pkg/logging"
	"github.com/rowview/rowview/pkg/viewport"
)

// Surface is the host display contract. Implementations materialize rows at
// absolute offsets along the scroll axis; the total extent makes the host's
// scroll range reflect the full dataset while only a window is realized.
type Surface interface {
	// Clear removes all currently materialized rows.
	Clear()

	// AppendRow materializes one row at the given offset along the scroll
	// axis, carrying its identifier and all field values in column order.
	AppendRow(id int64, values []int64, offset int)

	// SetTotalExtent sets the total scrollable extent of the surface.
	SetTotalExtent(extent int)
}

// Store is the read-only row access the renderer needs.
type Store interface {
	Count() int
	At(i int) (api.Row, bool)
}

// Renderer writes visible row ranges to a Surface.
type Renderer struct {
	surface   Surface
	rowHeight int
	logger    zerolog.Logger

	last    viewport.Range
	hasLast bool
}

// NewRenderer creates a renderer for the given surface and fixed row height.
func NewRenderer(surface Surface, rowHeight int) *Renderer {
	return &Renderer{
		surface:   surface,
		rowHeight: rowHeight,
		logger:    logging.NewLogger("renderer"),
	}
}

// SetTotal publishes the full dataset extent (rowCount * rowHeight) to the
// surface. Called once after a load completes.
func (r *Renderer) SetTotal(rowCount int) {
	r.surface.SetTotalExtent(rowCount * r.rowHeight)
}

// Reset forgets the last rendered range and clears the surface. Called when
// a new load begins so no half-loaded window stays visible.
func (r *Renderer) Reset() {
	r.last = viewport.Range{}
	r.hasLast = false
	r.surface.Clear()
}

// Render materializes exactly the rows in rng. It is a no-op when rng equals
// the previously rendered range; that skip is the primary cost-avoidance
// invariant of the whole design. Returns whether any work was done.
func (r *Renderer) Render(rng viewport.Range, store Store) bool {
	if r.hasLast && rng == r.last {
		return false
	}

	r.surface.Clear()
	for i := rng.Start; i <= rng.End; i++ {
		row, ok := store.At(i)
		if !ok {
			// Transitional range/store mismatch; skip rather than fail.
			continue
		}
		r.surface.AppendRow(row.ID, row.Values[:], i*r.rowHeight)
	}

	r.last = rng
	r.hasLast = true

	r.logger.Debug().
		Int("start", rng.Start).
		Int("end", rng.End).
		Msg("Rendered visible range")
	return true
}

// Package viewport computes which rows of a large dataset must be
// materialized for the current scroll position, and coalesces scroll signals
// to at most one recomputation per display frame.
package viewport

// Range is an inclusive range of row indices.
type Range struct {
	Start int
	End   int
}

// Len returns the number of rows in the range.
func (r Range) Len() int {
	return r.End - r.Start + 1
}

// ComputeVisibleRange returns the inclusive range of row indices that
// intersect the viewport plus bufferSize extra rows on each side, clamped to
// [0, rowCount-1]. The second return value is false when rowCount is zero and
// nothing should be rendered.
//
// Buffer rows exist solely to avoid visible blank flashes during fast
// scrolling between a scroll signal and the next render.
func ComputeVisibleRange(scrollOffset, containerExtent, rowHeight, bufferSize, rowCount int) (Range, bool) {
	if rowCount <= 0 || rowHeight <= 0 {
		return Range{}, false
	}
	if scrollOffset < 0 {
		scrollOffset = 0
	}

	start := scrollOffset/rowHeight - bufferSize
	if start < 0 {
		start = 0
	}
	if start > rowCount-1 {
		start = rowCount - 1
	}

	// Last row touching the viewport bottom edge, then the buffer.
	end := ceilDiv(scrollOffset+containerExtent, rowHeight) - 1 + bufferSize
	if end > rowCount-1 {
		end = rowCount - 1
	}
	if end < start {
		end = start
	}

	return Range{Start: start, End: end}, true
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// State is the rendering pipeline's viewport bookkeeping. It is owned and
// mutated only by the scroll/render path, never by the loader.
type State struct {
	// ScrollOffset is the current scroll position along the scroll axis.
	ScrollOffset int

	// ContainerExtent is the viewport size along the scroll axis.
	ContainerExtent int

	// RowHeight is the fixed per-row extent.
	RowHeight int

	// BufferSize is the number of extra rows rendered on each side.
	BufferSize int
}

// Visible computes the visible range for the current state.
func (s *State) Visible(rowCount int) (Range, bool) {
	return ComputeVisibleRange(s.ScrollOffset, s.ContainerExtent, s.RowHeight, s.BufferSize, rowCount)
}

// MaxScrollOffset returns the largest useful scroll offset for rowCount rows.
func (s *State) MaxScrollOffset(rowCount int) int {
	max := rowCount*s.RowHeight - s.ContainerExtent
	if max < 0 {
		return 0
	}
	return max
}

// ScrollTo sets the scroll offset, clamped to [0, MaxScrollOffset].
func (s *State) ScrollTo(offset, rowCount int) {
	if offset < 0 {
		offset = 0
	}
	if max := s.MaxScrollOffset(rowCount); offset > max {
		offset = max
	}
	s.ScrollOffset = offset
}

// ScrollBy adjusts the scroll offset by delta, clamped.
func (s *State) ScrollBy(delta, rowCount int) {
	s.ScrollTo(s.ScrollOffset+delta, rowCount)
}

// Reset returns the scroll position to the top, as done on every new load.
func (s *State) Reset() {
	s.ScrollOffset = 0
}

package main

import (
	"fmt"
	"strings"

	"github.com/rowview/rowview/pkg/api"
)

// termRowHeight is the fixed row height on a terminal surface: one line.
const termRowHeight = 1

// termSurface is the terminal implementation of render.Surface. Offsets are
// line indices (row height 1). It only holds the materialized window; the
// total extent is what makes the scrollbar math cover the full dataset.
type termSurface struct {
	rows        []surfaceRow
	totalExtent int
}

type surfaceRow struct {
	id     int64
	values []int64
	offset int
}

func (s *termSurface) Clear() {
	s.rows = s.rows[:0]
}

func (s *termSurface) AppendRow(id int64, values []int64, offset int) {
	vals := make([]int64, len(values))
	copy(vals, values)
	s.rows = append(s.rows, surfaceRow{id: id, values: vals, offset: offset})
}

func (s *termSurface) SetTotalExtent(extent int) {
	s.totalExtent = extent
}

// RowAt returns the materialized row at the given line offset. Materialized
// rows are contiguous, so this is an index probe rather than a scan.
func (s *termSurface) RowAt(offset int) (surfaceRow, bool) {
	if len(s.rows) == 0 {
		return surfaceRow{}, false
	}
	i := offset - s.rows[0].offset
	if i < 0 || i >= len(s.rows) {
		return surfaceRow{}, false
	}
	return s.rows[i], true
}

// columnWidth is the rendered width of one value column.
const columnWidth = 5

// idWidth is the rendered width of the id column.
const idWidth = 8

// visibleColumns returns how many value columns fit in width.
func visibleColumns(width int) int {
	n := (width - idWidth - 3) / columnWidth
	if n < 1 {
		n = 1
	}
	if n > api.ColumnCount {
		n = api.ColumnCount
	}
	return n
}

// headerLine formats the column header for the given width.
func headerLine(width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%*s │", idWidth, "id")
	for _, name := range api.ColumnNames()[:visibleColumns(width)] {
		fmt.Fprintf(&b, "%*s", columnWidth, name)
	}
	return b.String()
}

// formatRow formats one materialized row for the given width.
func formatRow(row surfaceRow, width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%*d │", idWidth, row.id)
	n := visibleColumns(width)
	if n > len(row.values) {
		n = len(row.values)
	}
	for _, v := range row.values[:n] {
		fmt.Fprintf(&b, "%*d", columnWidth, v)
	}
	return b.String()
}

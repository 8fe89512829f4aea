package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermSurface_RowAt(t *testing.T) {
	s := &termSurface{}
	s.AppendRow(11, []int64{1, 2, 3}, 10)
	s.AppendRow(12, []int64{4, 5, 6}, 11)
	s.AppendRow(13, []int64{7, 8, 9}, 12)

	row, ok := s.RowAt(11)
	require.True(t, ok)
	assert.Equal(t, int64(12), row.id)

	_, ok = s.RowAt(9)
	assert.False(t, ok)
	_, ok = s.RowAt(13)
	assert.False(t, ok)
}

func TestTermSurface_ClearDropsRows(t *testing.T) {
	s := &termSurface{}
	s.AppendRow(1, []int64{1}, 0)
	s.Clear()

	_, ok := s.RowAt(0)
	assert.False(t, ok)
}

func TestTermSurface_TotalExtent(t *testing.T) {
	s := &termSurface{}
	s.SetTotalExtent(100000)
	assert.Equal(t, 100000, s.totalExtent)
}

func TestTermSurface_AppendCopiesValues(t *testing.T) {
	s := &termSurface{}
	values := []int64{1, 2, 3}
	s.AppendRow(1, values, 0)
	values[0] = 99

	row, ok := s.RowAt(0)
	require.True(t, ok)
	assert.Equal(t, int64(1), row.values[0], "surface must not alias caller memory")
}

func TestHeaderLine(t *testing.T) {
	line := headerLine(80)
	assert.Contains(t, line, "id")
	assert.Contains(t, line, "a")
}

func TestFormatRow_FitsColumns(t *testing.T) {
	row := surfaceRow{id: 42, values: []int64{7, 8, 9, 10}}

	line := formatRow(row, 30)
	assert.Contains(t, line, "42")
	// Narrow width renders only the columns that fit.
	assert.LessOrEqual(t, len(line), 30)
}

func TestVisibleColumns(t *testing.T) {
	assert.Equal(t, 1, visibleColumns(10), "at least one column even on tiny terminals")
	assert.Equal(t, 26, visibleColumns(1000), "capped at the dataset's 26 columns")
	assert.True(t, strings.HasSuffix(headerLine(1000), "z"))
}

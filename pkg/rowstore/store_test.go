package rowstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowview/rowview/internal/testutil"
)

func TestStore_Empty(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.Count())

	_, ok := s.At(0)
	assert.False(t, ok, "empty store has no rows")
}

func TestStore_Replace(t *testing.T) {
	s := New()
	rows := testutil.GenerateRows(100)
	s.Replace(rows)

	require.Equal(t, 100, s.Count())

	first, ok := s.At(0)
	require.True(t, ok)
	assert.Equal(t, int64(1), first.ID)

	last, ok := s.At(99)
	require.True(t, ok)
	assert.Equal(t, int64(100), last.ID)
}

func TestStore_At_OutOfRange(t *testing.T) {
	s := New()
	s.Replace(testutil.GenerateRows(10))

	// Out-of-range access is "not yet available", never a panic.
	for _, i := range []int{-1, 10, 1 << 20} {
		_, ok := s.At(i)
		assert.False(t, ok, "At(%d) should report absent", i)
	}
}

func TestStore_ReplaceIsBulk(t *testing.T) {
	s := New()
	s.Replace(testutil.GenerateRows(10))
	s.Replace(testutil.GenerateRows(3))

	// A reload fully supersedes the previous dataset.
	assert.Equal(t, 3, s.Count())
}

func TestStore_Reset(t *testing.T) {
	s := New()
	s.Replace(testutil.GenerateRows(10))
	s.Reset()

	assert.Equal(t, 0, s.Count())
	_, ok := s.At(0)
	assert.False(t, ok)
}

package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameScheduler_CoalescesBursts(t *testing.T) {
	s := NewFrameScheduler()
	runs := 0

	// A burst of scroll signals within one frame.
	for i := 0; i < 100; i++ {
		s.Schedule(func() { runs++ })
	}

	assert.True(t, s.Pending())
	assert.True(t, s.Tick())
	assert.Equal(t, 1, runs, "a burst must cost exactly one recomputation")
}

func TestFrameScheduler_LatestWins(t *testing.T) {
	s := NewFrameScheduler()
	var got int

	s.Schedule(func() { got = 1 })
	s.Schedule(func() { got = 2 })
	s.Tick()

	assert.Equal(t, 2, got, "scheduling supersedes the unexecuted callback")
}

func TestFrameScheduler_IdleTick(t *testing.T) {
	s := NewFrameScheduler()
	assert.False(t, s.Pending())
	assert.False(t, s.Tick(), "idle frames do no work")
}

func TestFrameScheduler_OnePerFrame(t *testing.T) {
	s := NewFrameScheduler()
	runs := 0

	s.Schedule(func() { runs++ })
	s.Tick()
	s.Tick()
	s.Tick()

	assert.Equal(t, 1, runs, "a callback runs on exactly one frame")
}

func TestFrameScheduler_CallbackMayReschedule(t *testing.T) {
	s := NewFrameScheduler()
	runs := 0

	s.Schedule(func() {
		runs++
		s.Schedule(func() { runs++ })
	})

	s.Tick()
	assert.Equal(t, 1, runs)
	s.Tick()
	assert.Equal(t, 2, runs, "follow-up work lands on the next frame")
}

func TestFrameScheduler_Cancel(t *testing.T) {
	s := NewFrameScheduler()
	runs := 0

	s.Schedule(func() { runs++ })
	s.Cancel()

	assert.False(t, s.Tick())
	assert.Equal(t, 0, runs)
}

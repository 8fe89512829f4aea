package viewport

import (
	"sync"
)

// FrameScheduler coalesces high-frequency scroll signals into at most one
// recomputation per display frame.
//
// It holds a single pending callback: scheduling while one is already pending
// supersedes it, so a burst of scroll signals within one frame costs exactly
// one recomputation. This is a debouncing contract, not true concurrency; the
// frame source (a real ticker or a test) drives execution via Tick.
type FrameScheduler struct {
	mu      sync.Mutex
	pending func()
}

// NewFrameScheduler creates an idle scheduler.
func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{}
}

// Schedule enqueues fn for the next frame, replacing any unexecuted callback.
func (s *FrameScheduler) Schedule(fn func()) {
	s.mu.Lock()
	s.pending = fn
	s.mu.Unlock()
}

// Cancel drops any pending callback without executing it.
func (s *FrameScheduler) Cancel() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}

// Pending reports whether a callback is waiting for the next frame.
func (s *FrameScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Tick runs the pending callback, if any, and reports whether one ran.
// The callback slot is cleared before the callback executes so it may
// schedule follow-up work for the next frame.
func (s *FrameScheduler) Tick() bool {
	s.mu.Lock()
	fn := s.pending
	s.pending = nil
	s.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Package timestep converts variable wall-clock deltas into a deterministic
// sequence of fixed logic ticks.
package timestep

import (
	"time"

	"github.com/vovakirdan/spritecore/internal/core"
)

// Scheduler is an accumulator-based fixed-dt driver.
// It is not safe for concurrent use; the frame loop owns it.
type Scheduler struct {
	fixedDT     float64
	maxDelta    float64
	accumulator float64
	fixedTime   float64
	ticks       uint64
	last        time.Time
}

// New creates a scheduler. Non-positive arguments fall back to the defaults
// of 1/60 s per tick and a 0.25 s delta clamp.
func New(fixedDT, maxDelta float64) *Scheduler {
	if fixedDT <= 0 {
		fixedDT = core.DefaultFixedDT
	}
	if maxDelta <= 0 {
		maxDelta = core.DefaultMaxFrameDelta
	}
	return &Scheduler{fixedDT: fixedDT, maxDelta: maxDelta}
}

// FixedDT returns the tick length in seconds.
func (s *Scheduler) FixedDT() float64 {
	return s.fixedDT
}

// Advance feeds one wall-clock delta and runs tick for every whole fixed step
// in the accumulator. Negative deltas count as zero and deltas above the
// clamp are cut so a stalled process does not burst through a backlog.
// Returns the number of ticks fired.
func (s *Scheduler) Advance(delta float64, tick func(dt float64)) int {
	s.accumulator += core.ClampF(delta, 0, s.maxDelta)

	n := 0
	for s.accumulator >= s.fixedDT {
		if tick != nil {
			tick(s.fixedDT)
		}
		s.fixedTime += s.fixedDT
		s.accumulator -= s.fixedDT
		s.ticks++
		n++
	}
	return n
}

// Poll measures the elapsed time since the previous poll and advances by it.
// The first poll only records the sample and fires no ticks.
func (s *Scheduler) Poll(now time.Time, tick func(dt float64)) int {
	if s.last.IsZero() {
		s.last = now
		return 0
	}
	delta := now.Sub(s.last).Seconds()
	s.last = now
	return s.Advance(delta, tick)
}

// Alpha is the fraction of a tick left in the accumulator, for interpolation.
func (s *Scheduler) Alpha() float64 {
	return s.accumulator / s.fixedDT
}

// FixedTime is the simulated time advanced so far, in seconds.
func (s *Scheduler) FixedTime() float64 {
	return s.fixedTime
}

// Ticks is the number of ticks fired so far.
func (s *Scheduler) Ticks() uint64 {
	return s.ticks
}

// Reset clears all accumulated time and the wall-clock sample.
func (s *Scheduler) Reset() {
	s.accumulator = 0
	s.fixedTime = 0
	s.ticks = 0
	s.last = time.Time{}
}

package realtime

import (
	"fmt"
	"runtime"
)

// AllocGuard runs fn and panics if the process made any heap allocation
// meanwhile. Allocations by other goroutines count too, so use it where the
// caller controls everything that runs.
func AllocGuard(fn func()) {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	fn()
	runtime.ReadMemStats(&after)
	if n := after.Mallocs - before.Mallocs; n != 0 {
		panic(fmt.Sprintf("realtime: %d unexpected heap allocations", n))
	}
}

// measure returns how many heap allocations happened while fn ran, reusing
// the scheduler's statistics buffers.
func (s *Scheduler) measure(fn func()) uint64 {
	runtime.ReadMemStats(&s.mem[0])
	fn()
	runtime.ReadMemStats(&s.mem[1])
	return s.mem[1].Mallocs - s.mem[0].Mallocs
}

// Package coordinator owns the single shared mutable cell in a scan: the
// page cursor that hands out contiguous page-range tasks to worker
// goroutines. It is deliberately a small mutex-guarded struct, not a
// service — see spec §9's warning against overengineering shared state.
package coordinator

import (
	"math"
	"sync"
)

// U32Max is the page-count sentinel used to extend the last task's upper
// bound past the server's (possibly stale) page estimate.
const U32Max = math.MaxUint32

// PageRangeTask is a half-open range of physical pages, encoded as a
// closed ctid range (lo,0)..(hi,0) by the worker that claims it.
type PageRangeTask struct {
	Lo uint32
	Hi uint32
}

// Coordinator hands out PageRangeTasks drawn from [0, ApproxPages) in
// PagesPerTask-wide slices, serialized by a single mutex. It has no
// notion of workers — workers pull tasks until told there are none left.
type Coordinator struct {
	mu           sync.Mutex
	nextPage     uint64
	ApproxPages  uint64
	PagesPerTask uint64
}

func New(approxPages, pagesPerTask uint64) *Coordinator {
	if pagesPerTask == 0 {
		pagesPerTask = 1
	}
	if approxPages == 0 {
		approxPages = 1
	}
	return &Coordinator{ApproxPages: approxPages, PagesPerTask: pagesPerTask}
}

// NextTask returns the next page-range task, or ok=false once the cursor
// has covered the full estimated page range. The very last task to be
// handed out always has Hi promoted to U32Max, since the server's page
// estimate is advisory, not authoritative.
func (c *Coordinator) NextTask() (task PageRangeTask, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.nextPage >= c.ApproxPages {
		return PageRangeTask{}, false
	}

	lo := c.nextPage
	hi := lo + c.PagesPerTask
	promoted := hi >= c.ApproxPages
	if promoted {
		hi = U32Max
	}
	c.nextPage += c.PagesPerTask

	return PageRangeTask{Lo: uint32(lo), Hi: uint32(hi)}, true
}

// MaxWorkers is the coordinator's recommendation for how many worker
// goroutines a ParallelScan should spawn, never fewer than one.
func (c *Coordinator) MaxWorkers() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.ApproxPages / c.PagesPerTask
	if n < 1 {
		n = 1
	}
	return int(n)
}

// Progress reports how many pages have been claimed so far, for the
// debug server's scan-progress endpoint.
func (c *Coordinator) Progress() (claimed, total uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nextPage > c.ApproxPages {
		return c.ApproxPages, c.ApproxPages
	}
	return c.nextPage, c.ApproxPages
}

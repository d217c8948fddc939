package coordinator

import (
	"sync"
	"testing"
)

func TestSinglePageTableYieldsOneSentinelTask(t *testing.T) {
	c := New(1, 1000)
	task, ok := c.NextTask()
	if !ok {
		t.Fatal("expected a task")
	}
	if task.Lo != 0 || task.Hi != U32Max {
		t.Fatalf("got %+v, want {0, U32Max}", task)
	}
	if _, ok := c.NextTask(); ok {
		t.Fatal("expected no more tasks")
	}
}

func TestNextTaskPromotesLastRange(t *testing.T) {
	c := New(2500, 1000)

	t1, ok := c.NextTask()
	if !ok || t1.Lo != 0 || t1.Hi != 1000 {
		t.Fatalf("task1 = %+v, ok=%v", t1, ok)
	}
	t2, ok := c.NextTask()
	if !ok || t2.Lo != 1000 || t2.Hi != 2000 {
		t.Fatalf("task2 = %+v, ok=%v", t2, ok)
	}
	t3, ok := c.NextTask()
	if !ok || t3.Lo != 2000 || t3.Hi != U32Max {
		t.Fatalf("task3 = %+v, ok=%v, want hi promoted to U32Max", t3, ok)
	}
	if _, ok := c.NextTask(); ok {
		t.Fatal("expected no more tasks after the tail task")
	}
}

func TestMaxWorkers(t *testing.T) {
	if got := New(100, 1000).MaxWorkers(); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
	if got := New(10000, 1000).MaxWorkers(); got != 10 {
		t.Fatalf("got %d, want 10", got)
	}
}

func TestConcurrentNextTaskClaimsDisjointRanges(t *testing.T) {
	c := New(100000, 1000)
	const workers = 8

	seen := make(chan PageRangeTask, 200)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				task, ok := c.NextTask()
				if !ok {
					return
				}
				seen <- task
			}
		}()
	}
	wg.Wait()
	close(seen)

	claimed := make(map[uint32]bool)
	count := 0
	for task := range seen {
		if claimed[task.Lo] {
			t.Fatalf("task with lo=%d claimed twice", task.Lo)
		}
		claimed[task.Lo] = true
		count++
	}
	if count != 100 {
		t.Fatalf("got %d tasks, want 100", count)
	}
}

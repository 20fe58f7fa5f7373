package compute

import (
	"sync/atomic"
	"testing"
)

func TestForCoversRange(t *testing.T) {
	tests := []struct {
		name     string
		workers  int
		n        int
		minChunk int
	}{
		{"serial", 1, 100, 1},
		{"parallel", 4, 1000, 10},
		{"small n", 8, 3, 1},
		{"chunk larger than n", 4, 10, 100},
		{"uneven", 3, 101, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCPUBackendWorkers(tt.workers)
			hits := make([]int32, tt.n)
			var maxWorker int32 = -1

			c.For(tt.n, tt.minChunk, func(worker, start, end int) {
				for {
					cur := atomic.LoadInt32(&maxWorker)
					if int32(worker) <= cur || atomic.CompareAndSwapInt32(&maxWorker, cur, int32(worker)) {
						break
					}
				}
				for i := start; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})

			for i, h := range hits {
				if h != 1 {
					t.Fatalf("index %d visited %d times", i, h)
				}
			}
			if int(maxWorker) >= c.Workers() {
				t.Errorf("worker index %d out of range for %d workers", maxWorker, c.Workers())
			}
		})
	}
}

func TestForEmpty(t *testing.T) {
	c := NewCPUBackendWorkers(4)
	called := false
	c.For(0, 1, func(worker, start, end int) { called = true })
	if called {
		t.Error("fn must not be called for an empty range")
	}
}

func TestNewCPUBackendWorkersClamp(t *testing.T) {
	if NewCPUBackendWorkers(0).Workers() != 1 {
		t.Error("expected at least one worker")
	}
	if NewCPUBackend().Workers() < 1 {
		t.Error("expected at least one worker")
	}
}

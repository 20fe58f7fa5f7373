// Package compute provides the worker pools used by the grid solver.
//
// Work is expressed as an index range split into contiguous chunks:
//
//	backend := compute.Default()
//	backend.For(len(grid), 4096, func(worker, start, end int) {
//	    for i := start; i < end; i++ {
//	        grid[i] *= scale
//	    }
//	})
//
// Scatter-style work, where several indices write the same output cell, keeps
// one private accumulator per worker and reduces them after For returns. The
// worker argument is the index of that private buffer.
package compute

package compute

// Backend runs index-range work on some set of workers.
type Backend interface {
	Name() string
	Workers() int
	// For splits [0, n) into contiguous chunks of at least minChunk indices and
	// calls fn once per chunk. worker is in [0, Workers()) and is unique among
	// concurrently running calls, so it can index per-worker scratch space.
	For(n, minChunk int, fn func(worker, start, end int))
}

var defaultBackend Backend = NewCPUBackend()

func SetDefault(b Backend) { defaultBackend = b }

func Default() Backend { return defaultBackend }

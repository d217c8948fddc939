package utils

var (
	// DefaultChunkCapacity is the number of rows accumulated into a chunk
	// before it is published, if ScanOptions.ChunkCapacity is unset.
	DefaultChunkCapacity = GetEnvOrDefaultInt("PGSCAN_CHUNK_CAPACITY", 2048)

	// DefaultPagesPerTask is the width of a page-range task, if
	// ScanOptions.PagesPerTask is unset.
	DefaultPagesPerTask = GetEnvOrDefaultInt("PGSCAN_PAGES_PER_TASK", 1000)

	// DefaultMaxWorkers bounds how many worker goroutines ParallelScan will
	// spawn when ScanOptions.MaxWorkers is unset.
	DefaultMaxWorkers = GetEnvOrDefaultInt("PGSCAN_MAX_WORKERS", 4)
)

// Package pgscan is the public entry point for the parallel Postgres
// scan bridge: Bind a table once, then stream it out as Arrow chunks
// through Scan or ParallelScan, in the style of icedb.go's thin wiring
// struct over its metastore/datastore dependencies.
package pgscan

import (
	"context"
	"fmt"
	"sync"

	"github.com/apache/arrow/go/arrow/array"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/danthegoodman1/pgscan/coordinator"
	"github.com/danthegoodman1/pgscan/debugserver"
	"github.com/danthegoodman1/pgscan/gologger"
	"github.com/danthegoodman1/pgscan/introspect"
	"github.com/danthegoodman1/pgscan/pgerr"
	"github.com/danthegoodman1/pgscan/pgpool"
	"github.com/danthegoodman1/pgscan/predicate"
	"github.com/danthegoodman1/pgscan/utils"
	"github.com/danthegoodman1/pgscan/worker"
)

var (
	logger   = gologger.NewLogger()
	validate = validator.New()
)

// ScanOptions describes one scan, validated once before any connection
// is opened.
type ScanOptions struct {
	DSN    string `validate:"required"`
	Schema string `validate:"required"`
	Table  string `validate:"required"`

	// PagesPerTask and ChunkCapacity fall back to utils.DefaultPagesPerTask
	// and utils.DefaultChunkCapacity when zero.
	PagesPerTask  uint64 `validate:"omitempty,min=1"`
	ChunkCapacity int    `validate:"omitempty,min=1"`

	// MaxWorkers falls back to utils.DefaultMaxWorkers when zero; ignored
	// by Scan, which always runs a single worker.
	MaxWorkers int `validate:"omitempty,min=1"`

	// Predicate is rendered and pushed into the COPY query's WHERE clause.
	// A nil Predicate scans unfiltered.
	Predicate *predicate.Node

	// Projection names the columns to project, in order; "rowid" resolves
	// to the synthesized ctid-derived row id. An empty Projection scans
	// every column in catalog order.
	Projection []string

	// OnChunk receives each finished chunk. It may be called concurrently
	// from multiple worker goroutines under ParallelScan and must not
	// retain the record past release.
	OnChunk func(array.Record)
}

func (o *ScanOptions) applyDefaults() {
	if o.PagesPerTask == 0 {
		o.PagesPerTask = uint64(utils.DefaultPagesPerTask)
	}
	if o.ChunkCapacity == 0 {
		o.ChunkCapacity = int(utils.DefaultChunkCapacity)
	}
	if o.MaxWorkers == 0 {
		o.MaxWorkers = int(utils.DefaultMaxWorkers)
	}
}

// Scan runs a single-worker scan of the table described by opts,
// streaming chunks to opts.OnChunk in ctid order.
func Scan(ctx context.Context, opts ScanOptions) error {
	opts.MaxWorkers = 1
	if err := parallelScan(ctx, opts); err != nil {
		return fmt.Errorf("error in pgscan.Scan: %w", err)
	}
	return nil
}

// ParallelScan runs a scan across up to opts.MaxWorkers goroutines, each
// claiming page-range tasks from a shared coordinator until none remain.
// The multiset of rows delivered to opts.OnChunk is independent of
// opts.MaxWorkers.
func ParallelScan(ctx context.Context, opts ScanOptions) error {
	if err := parallelScan(ctx, opts); err != nil {
		return fmt.Errorf("error in pgscan.ParallelScan: %w", err)
	}
	return nil
}

func parallelScan(ctx context.Context, opts ScanOptions) error {
	opts.applyDefaults()
	if err := validate.Struct(&opts); err != nil {
		return err
	}
	if opts.OnChunk == nil {
		return pgerr.New(pgerr.UnsupportedType, "ScanOptions.OnChunk is required")
	}

	scanID := uuid.NewString()
	scopedLogger := logger.With().Str("scan_id", scanID).Logger()
	ctx = scopedLogger.WithContext(ctx)
	ctx = context.WithValue(ctx, gologger.ScanIDKey, scanID)

	desc, err := introspect.Bind(ctx, opts.DSN, opts.Schema, opts.Table, opts.PagesPerTask)
	if err != nil {
		return err
	}

	projected, err := resolveProjection(desc, opts.Projection)
	if err != nil {
		return err
	}

	predSQL, err := predicate.Render(opts.Predicate)
	if err != nil {
		return err
	}

	coord := coordinator.New(desc.ApproxPageCount, desc.PagesPerTask)
	unregisterScan := debugserver.Default.RegisterScan(scanID, opts.Schema, opts.Table, coord)
	defer unregisterScan()

	workers := opts.MaxWorkers
	if max := coord.MaxWorkers(); max < workers {
		workers = max
	}

	scopedLogger.Info().Int("workers", workers).Uint64("approx_pages", desc.ApproxPageCount).
		Msg("starting scan")

	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		workerID := utils.GenRandomID(fmt.Sprintf("w%d-", i))
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			workerCtx := context.WithValue(ctx, gologger.WorkerIDKey, id)
			unregisterWorker := debugserver.Default.RegisterWorker(scanID, id)
			defer unregisterWorker()
			cfg := worker.Config{
				ID:            id,
				Descriptor:    desc,
				Coordinator:   coord,
				Projected:     projected,
				PredicateSQL:  predSQL,
				ChunkCapacity: opts.ChunkCapacity,
				OnChunk:       opts.OnChunk,
			}
			if err := worker.Run(workerCtx, cfg); err != nil {
				errCh <- err
			}
		}(workerID)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// resolveProjection turns a list of column names (plus the "rowid"
// sentinel) into the projected-column index slice worker.Config expects.
// An empty names list projects every column in catalog order.
func resolveProjection(desc *introspect.ScanDescriptor, names []string) ([]int, error) {
	if len(names) == 0 {
		out := make([]int, len(desc.Columns))
		for i := range desc.Columns {
			out[i] = i
		}
		return out, nil
	}

	out := make([]int, len(names))
	for i, name := range names {
		if name == "rowid" {
			out[i] = worker.RowIDColumn
			continue
		}
		idx := -1
		for j, col := range desc.Columns {
			if col.Name == name {
				idx = j
				break
			}
		}
		if idx == -1 {
			return nil, pgerr.Newf(pgerr.TableNotFound, "projected column %q not found on %q.%q", name, desc.Schema, desc.Table)
		}
		out[i] = idx
	}
	return out, nil
}

// AttachOptions configures Attach, mirroring spec's named attach options.
type AttachOptions struct {
	DSN string `validate:"required"`

	SourceSchema   string
	SinkSchema     string
	Overwrite      bool
	FilterPushdown bool
}

func (o *AttachOptions) applyDefaults() {
	if o.SourceSchema == "" {
		o.SourceSchema = "public"
	}
	if o.SinkSchema == "" {
		o.SinkSchema = "main"
	}
}

// AttachedTable is one table discovered by Attach, bound and ready to
// scan.
type AttachedTable struct {
	Table      string
	Descriptor *introspect.ScanDescriptor
}

// Attach enumerates ordinary tables in opts.SourceSchema and binds each
// one, the way postgres_scanner's AttachFunction enumerates and registers
// a view per table. Registering the resulting descriptors as views in a
// sink engine is the caller's responsibility; Attach only discovers and
// binds.
func Attach(ctx context.Context, opts AttachOptions) ([]AttachedTable, error) {
	opts.applyDefaults()
	if err := validate.Struct(&opts); err != nil {
		return nil, err
	}

	pool, err := pgpool.Connect(ctx, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("error in pgscan.Attach connecting: %w", err)
	}
	defer pool.Close()

	const q = `
SELECT relname
FROM pg_attribute
    JOIN pg_class ON attrelid = pg_class.oid
    JOIN pg_namespace ON relnamespace = pg_namespace.oid
WHERE nspname = $1 AND attnum > 0 AND relkind = 'r'
GROUP BY relname
ORDER BY relname`

	rows, err := pool.Query(ctx, q, opts.SourceSchema)
	if err != nil {
		return nil, fmt.Errorf("error in pgscan.Attach enumerating tables: %w", err)
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("error in pgscan.Attach scanning table name: %w", err)
		}
		tables = append(tables, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error in pgscan.Attach iterating tables: %w", err)
	}

	logger.Info().Str("source_schema", opts.SourceSchema).Int("tables", len(tables)).
		Msg("attach discovered tables")

	attached := make([]AttachedTable, 0, len(tables))
	for _, table := range tables {
		desc, err := introspect.Bind(ctx, opts.DSN, opts.SourceSchema, table, 0)
		if err != nil {
			return nil, fmt.Errorf("error in pgscan.Attach binding %q: %w", table, err)
		}
		attached = append(attached, AttachedTable{Table: table, Descriptor: desc})
	}

	return attached, nil
}

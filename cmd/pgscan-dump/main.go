// Command pgscan-dump drives a parallel scan of one remote Postgres
// table and writes the result to a local parquet file, the way the
// teacher's main.go wires a long-running process around a single
// subsystem plus graceful shutdown on signal.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/apache/arrow/go/arrow/array"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/danthegoodman1/pgscan"
	"github.com/danthegoodman1/pgscan/debugserver"
	"github.com/danthegoodman1/pgscan/gologger"
	"github.com/danthegoodman1/pgscan/introspect"
	"github.com/danthegoodman1/pgscan/parquet_accumulator"
)

var logger = gologger.NewLogger()

func main() {
	dsn := flag.String("dsn", "", "postgres connection string")
	schema := flag.String("schema", "public", "remote schema")
	table := flag.String("table", "", "remote table")
	out := flag.String("out", "out.parquet", "output parquet file path")
	maxWorkers := flag.Int("workers", 0, "max worker goroutines, 0 uses PGSCAN_MAX_WORKERS (default 4); capped by the coordinator's recommendation")
	withDebugServer := flag.Bool("debug-server", false, "start the debug introspection server alongside the scan")
	flag.Parse()

	if *dsn == "" || *table == "" {
		logger.Error().Msg("-dsn and -table are required")
		os.Exit(1)
	}

	if *withDebugServer {
		if _, err := debugserver.Start(nil); err != nil {
			logger.Error().Err(err).Msg("failed to start debug server")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Warn().Msg("received shutdown signal, canceling scan")
		cancel()
	}()

	desc, err := introspect.Bind(ctx, *dsn, *schema, *table, 0)
	if err != nil {
		logger.Error().Err(err).Msg("failed to bind table")
		os.Exit(1)
	}

	dump, err := newDumper(*out, desc)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open output file")
		os.Exit(1)
	}

	opts := pgscan.ScanOptions{
		DSN:        *dsn,
		Schema:     *schema,
		Table:      *table,
		MaxWorkers: *maxWorkers,
		OnChunk:    dump.writeChunk,
	}

	scanErr := pgscan.ParallelScan(ctx, opts)
	closeErr := dump.close()

	if scanErr != nil {
		logger.Error().Err(scanErr).Msg("scan failed")
		os.Exit(1)
	}
	if closeErr != nil {
		logger.Error().Err(closeErr).Msg("failed to finalize parquet file")
		os.Exit(1)
	}

	logger.Info().Int64("rows", dump.rowCount()).Str("out", *out).Msg("scan complete")
}

// dumper serializes concurrent worker chunks into one parquet-go JSON
// writer. parquet-go's writer is not safe for concurrent Write calls, so
// every chunk is funneled through a mutex.
type dumper struct {
	mu     sync.Mutex
	file   *local.LocalFile
	writer *writer.JSONWriter
	rows   int64
	err    error
}

func newDumper(path string, desc *introspect.ScanDescriptor) (*dumper, error) {
	cols := make([]parquet_accumulator.ColumnSpec, len(desc.Columns))
	for i, c := range desc.Columns {
		cols[i] = parquet_accumulator.ColumnSpec{Name: c.Name, Type: c.TargetType}
	}
	schema, err := parquet_accumulator.NewSchema(cols)
	if err != nil {
		return nil, fmt.Errorf("error in newDumper building parquet schema: %w", err)
	}
	schemaString, err := schema.GetSchemaString()
	if err != nil {
		return nil, fmt.Errorf("error in newDumper rendering parquet schema: %w", err)
	}

	f, err := local.NewLocalFileWriter(path)
	if err != nil {
		return nil, fmt.Errorf("error in newDumper opening output file: %w", err)
	}
	pw, err := writer.NewJSONWriterFromWriter(schemaString, f, 4)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error in newDumper creating parquet writer: %w", err)
	}

	return &dumper{file: f, writer: pw}, nil
}

func (d *dumper) writeChunk(rec array.Record) {
	defer rec.Release()

	rows, err := rowsFromRecord(rec)
	if err != nil {
		d.mu.Lock()
		if d.err == nil {
			d.err = fmt.Errorf("error in dumper.writeChunk converting record: %w", err)
		}
		d.mu.Unlock()
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return
	}
	for _, row := range rows {
		b, err := json.Marshal(row)
		if err != nil {
			d.err = fmt.Errorf("error in dumper.writeChunk marshaling row: %w", err)
			return
		}
		if err := d.writer.Write(string(b)); err != nil {
			d.err = fmt.Errorf("error in dumper.writeChunk writing row: %w", err)
			return
		}
		d.rows++
	}
}

func (d *dumper) rowCount() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rows
}

func (d *dumper) close() error {
	d.mu.Lock()
	writeErr := d.err
	d.mu.Unlock()

	stopErr := d.writer.WriteStop()
	fileErr := d.file.Close()

	if writeErr != nil {
		return writeErr
	}
	if stopErr != nil {
		return fmt.Errorf("error in dumper.close stopping writer: %w", stopErr)
	}
	if fileErr != nil {
		return fmt.Errorf("error in dumper.close closing file: %w", fileErr)
	}
	return nil
}

package pgscan

import (
	"testing"

	"github.com/danthegoodman1/pgscan/introspect"
	"github.com/danthegoodman1/pgscan/typemap"
	"github.com/danthegoodman1/pgscan/worker"
)

func sampleScanDescriptor() *introspect.ScanDescriptor {
	return &introspect.ScanDescriptor{
		Schema: "public",
		Table:  "events",
		Columns: []introspect.ColumnDescriptor{
			{Name: "id", TargetType: typemap.TargetType{Kind: typemap.I64}},
			{Name: "payload", TargetType: typemap.TargetType{Kind: typemap.TEXT}},
		},
	}
}

func TestResolveProjectionEmptyProjectsAllColumnsInOrder(t *testing.T) {
	desc := sampleScanDescriptor()
	got, err := resolveProjection(desc, nil)
	if err != nil {
		t.Fatalf("resolveProjection: %v", err)
	}
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("got %v", got)
	}
}

func TestResolveProjectionResolvesRowIDSentinel(t *testing.T) {
	desc := sampleScanDescriptor()
	got, err := resolveProjection(desc, []string{"rowid", "id"})
	if err != nil {
		t.Fatalf("resolveProjection: %v", err)
	}
	if got[0] != worker.RowIDColumn || got[1] != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestResolveProjectionRejectsUnknownColumn(t *testing.T) {
	desc := sampleScanDescriptor()
	if _, err := resolveProjection(desc, []string{"nope"}); err == nil {
		t.Fatal("expected error for unknown projected column")
	}
}

func TestScanOptionsApplyDefaults(t *testing.T) {
	var opts ScanOptions
	opts.applyDefaults()
	if opts.PagesPerTask == 0 || opts.ChunkCapacity == 0 || opts.MaxWorkers == 0 {
		t.Fatalf("got %+v", opts)
	}
}

func TestAttachOptionsApplyDefaults(t *testing.T) {
	var opts AttachOptions
	opts.applyDefaults()
	if opts.SourceSchema != "public" || opts.SinkSchema != "main" {
		t.Fatalf("got %+v", opts)
	}
}

func TestParallelScanRejectsMissingOptions(t *testing.T) {
	err := ParallelScan(nil, ScanOptions{}) //nolint:staticcheck // nil ctx is fine, validation fails before use
	if err == nil {
		t.Fatal("expected validation error for empty options")
	}
}

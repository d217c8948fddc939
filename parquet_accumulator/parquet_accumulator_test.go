package parquet_accumulator

import (
	"testing"

	"github.com/danthegoodman1/pgscan/typemap"
)

func TestNewSchemaScalarColumns(t *testing.T) {
	cols := []ColumnSpec{
		{Name: "id", Type: typemap.TargetType{Kind: typemap.I64}},
		{Name: "name", Type: typemap.TargetType{Kind: typemap.TEXT}},
	}
	schema, err := NewSchema(cols)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	if got := schema.GetColumnNames(); len(got) != 2 || got[0] != "id" || got[1] != "name" {
		t.Fatalf("got %v", got)
	}
}

func TestNewSchemaListColumn(t *testing.T) {
	cols := []ColumnSpec{
		{Name: "tags", Type: typemap.TargetType{Kind: typemap.LIST, ElementType: &typemap.TargetType{Kind: typemap.TEXT}}},
	}
	schema, err := NewSchema(cols)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	if schema.Fields[0].TagStructs.Type != "LIST" {
		t.Fatalf("got %+v", schema.Fields[0])
	}
	if schema.Fields[0].Fields[0].TagStructs.Name != "Element" {
		t.Fatalf("got %+v", schema.Fields[0].Fields[0])
	}
}

func TestNewSchemaListMissingElementTypeFails(t *testing.T) {
	cols := []ColumnSpec{{Name: "bad", Type: typemap.TargetType{Kind: typemap.LIST}}}
	if _, err := NewSchema(cols); err == nil {
		t.Fatal("expected error for LIST column missing element type")
	}
}

func TestGetSchemaStringMatchesExpectedTags(t *testing.T) {
	cols := []ColumnSpec{
		{Name: "active", Type: typemap.TargetType{Kind: typemap.BOOL}},
	}
	schema, err := NewSchema(cols)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	got, err := schema.GetSchemaString()
	if err != nil {
		t.Fatalf("GetSchemaString: %v", err)
	}
	want := `{"Tag":"name=parquet_go_root, repetitiontype=REQUIRED","Fields":[{"Tag":"type=BOOLEAN, name=active, repetitiontype=OPTIONAL"}]}`
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
}

func TestNewSchemaUnmappedKindFails(t *testing.T) {
	cols := []ColumnSpec{{Name: "bad", Type: typemap.TargetType{Kind: typemap.Target("NOPE")}}}
	if _, err := NewSchema(cols); err == nil {
		t.Fatal("expected error for unmapped target kind")
	}
}

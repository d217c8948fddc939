package typemap

import (
	"context"
	"testing"

	"github.com/danthegoodman1/pgscan/pgwire"
)

type fakeEnumLookup struct {
	labels []string
}

func (f fakeEnumLookup) EnumLabels(ctx context.Context, namespace, name string) ([]string, error) {
	return f.labels, nil
}

func TestMapBaseTypes(t *testing.T) {
	cases := []struct {
		oid  uint32
		want Target
	}{
		{pgwire.BoolOID, BOOL},
		{pgwire.Int4OID, I32},
		{pgwire.Int8OID, I64},
		{pgwire.Float8OID, F64},
		{pgwire.TextOID, TEXT},
		{pgwire.UUIDOID, UUID},
		{pgwire.DateOID, DATE},
	}
	for _, c := range cases {
		got, needsCast, err := Map(context.Background(), fakeEnumLookup{}, ColumnMeta{Kind: KindBase, TypeOID: c.oid})
		if err != nil {
			t.Fatalf("Map(%d): %v", c.oid, err)
		}
		if needsCast {
			t.Fatalf("Map(%d) unexpectedly needs text cast", c.oid)
		}
		if got.Kind != c.want {
			t.Fatalf("Map(%d) = %v, want %v", c.oid, got.Kind, c.want)
		}
	}
}

func TestMapJSONBGetsOwnKindDistinctFromJSON(t *testing.T) {
	jsonb, _, err := Map(context.Background(), fakeEnumLookup{}, ColumnMeta{Kind: KindBase, TypeOID: pgwire.JSONBOID})
	if err != nil {
		t.Fatalf("Map(JSONBOID): %v", err)
	}
	if jsonb.Kind != JSONB {
		t.Fatalf("Map(JSONBOID) = %v, want JSONB", jsonb.Kind)
	}

	plainJSON, _, err := Map(context.Background(), fakeEnumLookup{}, ColumnMeta{Kind: KindBase, TypeOID: pgwire.JSONOID})
	if err != nil {
		t.Fatalf("Map(JSONOID): %v", err)
	}
	if plainJSON.Kind != TEXT {
		t.Fatalf("Map(JSONOID) = %v, want TEXT", plainJSON.Kind)
	}
}

func TestMapNumericUnboundedIsF64(t *testing.T) {
	got, needsCast, err := Map(context.Background(), fakeEnumLookup{}, ColumnMeta{
		Kind: KindBase, TypeOID: pgwire.NumericOID, TypeModifier: -1,
	})
	if err != nil || needsCast || got.Kind != F64 {
		t.Fatalf("got (%v, %v, %v)", got, needsCast, err)
	}
}

func TestMapNumericWithTypmod(t *testing.T) {
	typmod := int32((10 << 16) | 2 + 4)
	got, _, err := Map(context.Background(), fakeEnumLookup{}, ColumnMeta{
		Kind: KindBase, TypeOID: pgwire.NumericOID, TypeModifier: typmod,
	})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if got.Kind != DECIMAL || got.DecimalWidth != 10 || got.DecimalScale != 2 {
		t.Fatalf("got %+v", got)
	}
}

func TestMapUnknownFallsBackToText(t *testing.T) {
	got, needsCast, err := Map(context.Background(), fakeEnumLookup{}, ColumnMeta{Kind: KindBase, TypeOID: 999999})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if !needsCast || got.Kind != TEXT {
		t.Fatalf("got (%v, %v)", got, needsCast)
	}
}

func TestMapEnum(t *testing.T) {
	lookup := fakeEnumLookup{labels: []string{"red", "green", "blue"}}
	got, needsCast, err := Map(context.Background(), lookup, ColumnMeta{Kind: KindEnum, Namespace: "public", TypeName: "color"})
	if err != nil || needsCast {
		t.Fatalf("got (%v, %v, %v)", got, needsCast, err)
	}
	if got.Kind != ENUM || len(got.EnumLabels) != 3 || got.EnumLabels[2] != "blue" {
		t.Fatalf("got %+v", got)
	}
}

func TestMapArray(t *testing.T) {
	got, needsCast, err := Map(context.Background(), fakeEnumLookup{}, ColumnMeta{
		Kind:            KindArray,
		ElementTypeName: "int4",
		ElementTypeOID:  pgwire.Int4OID,
		ElementTypeKind: KindBase,
	})
	if err != nil || needsCast {
		t.Fatalf("got (%v, %v, %v)", got, needsCast, err)
	}
	if got.Kind != LIST || got.ElementType == nil || got.ElementType.Kind != I32 {
		t.Fatalf("got %+v", got)
	}
}

func TestIsArrayTypeName(t *testing.T) {
	if !IsArrayTypeName("_int4") {
		t.Fatal("expected _int4 to be recognized as an array type name")
	}
	if IsArrayTypeName("int4") {
		t.Fatal("did not expect int4 to be recognized as an array type name")
	}
	if ElementTypeName("_int4") != "int4" {
		t.Fatal("expected ElementTypeName(_int4) == int4")
	}
}

// Package typemap turns remote Postgres column metadata into the target
// analytic type system: base type lookups, decimal typmod decoding, enum
// label resolution, and one-dimensional array wrapping. Unknown types fall
// back to TEXT rather than failing the scan, per spec.
package typemap

import (
	"context"
	"strings"

	"github.com/danthegoodman1/pgscan/pgwire"
)

// RemoteKind classifies how a remote type is represented in the catalog.
type RemoteKind string

const (
	KindBase  RemoteKind = "base"
	KindEnum  RemoteKind = "enum"
	KindArray RemoteKind = "array"
	KindOther RemoteKind = "other"
)

// Target identifies the analytic engine's type, parameterized where
// needed (DECIMAL width/scale, ENUM labels, LIST element type).
type Target string

const (
	BOOL          Target = "BOOL"
	I16           Target = "I16"
	I32           Target = "I32"
	I64           Target = "I64"
	U32           Target = "U32"
	F32           Target = "F32"
	F64           Target = "F64"
	DECIMAL       Target = "DECIMAL"
	TEXT          Target = "TEXT"
	JSONB         Target = "JSONB"
	DATE          Target = "DATE"
	BLOB          Target = "BLOB"
	TIME          Target = "TIME"
	TIME_TZ       Target = "TIME_TZ"
	TIMESTAMP     Target = "TIMESTAMP"
	TIMESTAMP_TZ  Target = "TIMESTAMP_TZ"
	INTERVAL      Target = "INTERVAL"
	UUID          Target = "UUID"
	ENUM          Target = "ENUM"
	LIST          Target = "LIST"
)

// TargetType is the fully resolved target-side type for one column,
// carrying the extra parameters DECIMAL/ENUM/LIST each need.
type TargetType struct {
	Kind          Target
	DecimalWidth  int
	DecimalScale  int
	EnumLabels    []string
	ElementType   *TargetType
}

// ColumnMeta is the remote-side metadata the catalog join in Bind
// produces for one column, the input to Map.
type ColumnMeta struct {
	Name             string
	Namespace        string
	TypeName         string
	TypeOID          uint32
	Kind             RemoteKind
	TypeLength       int16
	TypeModifier     int32
	ElementTypeName  string
	ElementTypeOID   uint32
	ElementTypeKind  RemoteKind
	ElementTypeMod   int32
}

// EnumLookup resolves an enum type's ordered label list, typically backed
// by `SELECT unnest(enum_range(NULL::schema.name))` against the bind
// connection.
type EnumLookup interface {
	EnumLabels(ctx context.Context, namespace, name string) ([]string, error)
}

var baseTypeByOID = map[uint32]Target{
	pgwire.BoolOID:        BOOL,
	pgwire.Int2OID:        I16,
	pgwire.Int4OID:        I32,
	pgwire.Int8OID:        I64,
	pgwire.OIDOID:         U32,
	pgwire.Float4OID:      F32,
	pgwire.Float8OID:      F64,
	pgwire.CharOID:        TEXT,
	pgwire.BPCharOID:      TEXT,
	pgwire.VarcharOID:     TEXT,
	pgwire.TextOID:        TEXT,
	pgwire.JSONOID:        TEXT,
	pgwire.JSONBOID:       JSONB,
	pgwire.DateOID:        DATE,
	pgwire.ByteaOID:       BLOB,
	pgwire.TimeOID:        TIME,
	pgwire.TimetzOID:      TIME_TZ,
	pgwire.TimestampOID:   TIMESTAMP,
	pgwire.TimestamptzOID: TIMESTAMP_TZ,
	pgwire.IntervalOID:    INTERVAL,
	pgwire.UUIDOID:        UUID,
}

// Map resolves one column's target type, returning needsTextCast=true for
// anything the mapping table does not cover (the fallback-to-text path —
// never an error).
func Map(ctx context.Context, lookup EnumLookup, meta ColumnMeta) (TargetType, bool, error) {
	switch meta.Kind {
	case KindArray:
		elemMeta := ColumnMeta{
			Name:         meta.Name,
			Namespace:    meta.Namespace,
			TypeName:     meta.ElementTypeName,
			TypeOID:      meta.ElementTypeOID,
			Kind:         meta.ElementTypeKind,
			TypeModifier: meta.ElementTypeMod,
		}
		elemType, needsCast, err := Map(ctx, lookup, elemMeta)
		if err != nil {
			return TargetType{}, false, err
		}
		if needsCast {
			// An array whose element type itself falls back to text is
			// represented as LIST(TEXT); the server-side ::VARCHAR cast
			// happens on the scalar projection, not inside the array.
			elemType = TargetType{Kind: TEXT}
		}
		return TargetType{Kind: LIST, ElementType: &elemType}, false, nil

	case KindEnum:
		labels, err := lookup.EnumLabels(ctx, meta.Namespace, meta.TypeName)
		if err != nil {
			return TargetType{}, false, err
		}
		return TargetType{Kind: ENUM, EnumLabels: labels}, false, nil

	case KindBase:
		if meta.TypeOID == pgwire.NumericOID {
			if meta.TypeModifier == -1 {
				return TargetType{Kind: F64}, false, nil
			}
			width, scale := pgwire.DecimalTypmod(meta.TypeModifier)
			return TargetType{Kind: DECIMAL, DecimalWidth: width, DecimalScale: scale}, false, nil
		}
		if target, ok := baseTypeByOID[meta.TypeOID]; ok {
			return TargetType{Kind: target}, false, nil
		}
		return TargetType{Kind: TEXT}, true, nil

	default:
		return TargetType{Kind: TEXT}, true, nil
	}
}

// IsArrayTypeName reports whether a Postgres internal type name denotes
// the array variant of some element type — by convention these are named
// with a leading underscore (e.g. "_int4" is the array type for "int4").
func IsArrayTypeName(name string) bool {
	return strings.HasPrefix(name, "_")
}

// ElementTypeName strips the leading underscore naming convention.
func ElementTypeName(arrayTypeName string) string {
	return strings.TrimPrefix(arrayTypeName, "_")
}

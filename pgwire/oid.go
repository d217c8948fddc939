package pgwire

import "github.com/jackc/pgtype"

// Well-known OIDs for the base types the Type Mapper resolves directly,
// sourced from pgtype's constant table instead of re-declaring the numeric
// literals here.
const (
	BoolOID        = pgtype.BoolOID
	Int2OID        = pgtype.Int2OID
	Int4OID        = pgtype.Int4OID
	Int8OID        = pgtype.Int8OID
	OIDOID         = pgtype.OIDOID
	Float4OID      = pgtype.Float4OID
	Float8OID      = pgtype.Float8OID
	NumericOID     = pgtype.NumericOID
	CharOID        = pgtype.QCharOID
	BPCharOID      = pgtype.BPCharOID
	VarcharOID     = pgtype.VarcharOID
	TextOID        = pgtype.TextOID
	JSONOID        = pgtype.JSONOID
	JSONBOID       = pgtype.JSONBOID
	DateOID        = pgtype.DateOID
	ByteaOID       = pgtype.ByteaOID
	TimeOID        = pgtype.TimeOID
	TimestampOID   = pgtype.TimestampOID
	TimestamptzOID = pgtype.TimestamptzOID
	IntervalOID    = pgtype.IntervalOID
	UUIDOID        = pgtype.UUIDOID
)

// TimetzOID has no exported constant in jackc/pgtype v1; it is the stable
// well-known OID assigned by Postgres itself.
const TimetzOID = 1266

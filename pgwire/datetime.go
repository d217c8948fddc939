package pgwire

import (
	"encoding/binary"
	"time"

	"github.com/danthegoodman1/pgscan/pgerr"
)

// PGEpoch is the Postgres internal epoch used by date/timestamp wire
// values, 2000-01-01 UTC.
var PGEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// DecodeDate reads an i32 field: days since PGEpoch.
func DecodeDate(data []byte) (time.Time, error) {
	if len(data) != 4 {
		return time.Time{}, pgerr.Newf(pgerr.ProtocolError, "date field length %d, want 4", len(data))
	}
	days := int32(binary.BigEndian.Uint32(data))
	return PGEpoch.AddDate(0, 0, int(days)), nil
}

// DecodeTimestamp reads an i64 field: microseconds since PGEpoch. Used for
// both timestamp and timestamptz — the wire representation is identical,
// the distinction is purely about the target type's timezone semantics.
func DecodeTimestamp(data []byte) (time.Time, error) {
	if len(data) != 8 {
		return time.Time{}, pgerr.Newf(pgerr.ProtocolError, "timestamp field length %d, want 8", len(data))
	}
	micros := int64(binary.BigEndian.Uint64(data))
	return PGEpoch.Add(time.Duration(micros) * time.Microsecond), nil
}

// DecodeTime reads an i64 field: microseconds since midnight.
func DecodeTime(data []byte) (int64, error) {
	if len(data) != 8 {
		return 0, pgerr.Newf(pgerr.ProtocolError, "time field length %d, want 8", len(data))
	}
	return int64(binary.BigEndian.Uint64(data)), nil
}

// DecodeTimeTZ reads (i64 usec, i32 tz_offset_seconds) and folds the
// offset into the microsecond count, per spec: usec + tz_offset*1e6.
func DecodeTimeTZ(data []byte) (int64, error) {
	if len(data) != 12 {
		return 0, pgerr.Newf(pgerr.ProtocolError, "timetz field length %d, want 12", len(data))
	}
	usec := int64(binary.BigEndian.Uint64(data[0:8]))
	tzOffset := int32(binary.BigEndian.Uint32(data[8:12]))
	return usec + int64(tzOffset)*1_000_000, nil
}

// Interval is the decoded (microseconds, days, months) triple of a
// Postgres interval value.
type Interval struct {
	Micros int64
	Days   int32
	Months int32
}

// DecodeInterval reads (i64 usec, i32 days, i32 months).
func DecodeInterval(data []byte) (Interval, error) {
	if len(data) != 16 {
		return Interval{}, pgerr.Newf(pgerr.ProtocolError, "interval field length %d, want 16", len(data))
	}
	return Interval{
		Micros: int64(binary.BigEndian.Uint64(data[0:8])),
		Days:   int32(binary.BigEndian.Uint32(data[8:12])),
		Months: int32(binary.BigEndian.Uint32(data[12:16])),
	}, nil
}

// DecodeUUID returns the raw 16 big-endian bytes of a uuid field, which is
// already the canonical UUID byte order — no additional swap is needed.
func DecodeUUID(data []byte) ([16]byte, error) {
	var out [16]byte
	if len(data) != 16 {
		return out, pgerr.Newf(pgerr.ProtocolError, "uuid field length %d, want 16", len(data))
	}
	copy(out[:], data)
	return out, nil
}

package pgwire

import (
	"encoding/binary"
	"math"

	"github.com/danthegoodman1/pgscan/pgerr"
)

// The Decode* functions below decode one already-extracted field payload
// (as returned by Decoder.Field) for the fixed-width scalar types. They
// exist alongside Decoder's cursor-based Read* methods because a worker
// dispatches on a column's target type after the field has already been
// sliced out of the tuple.

func DecodeBool(data []byte) (bool, error) {
	if len(data) != 1 {
		return false, pgerr.Newf(pgerr.ProtocolError, "bool field has length %d, want 1", len(data))
	}
	return data[0] != 0, nil
}

func DecodeInt16(data []byte) (int16, error) {
	if len(data) != 2 {
		return 0, pgerr.Newf(pgerr.ProtocolError, "int2 field has length %d, want 2", len(data))
	}
	return int16(binary.BigEndian.Uint16(data)), nil
}

func DecodeInt32(data []byte) (int32, error) {
	if len(data) != 4 {
		return 0, pgerr.Newf(pgerr.ProtocolError, "int4 field has length %d, want 4", len(data))
	}
	return int32(binary.BigEndian.Uint32(data)), nil
}

func DecodeInt64(data []byte) (int64, error) {
	if len(data) != 8 {
		return 0, pgerr.Newf(pgerr.ProtocolError, "int8 field has length %d, want 8", len(data))
	}
	return int64(binary.BigEndian.Uint64(data)), nil
}

func DecodeUint32(data []byte) (uint32, error) {
	if len(data) != 4 {
		return 0, pgerr.Newf(pgerr.ProtocolError, "oid field has length %d, want 4", len(data))
	}
	return binary.BigEndian.Uint32(data), nil
}

func DecodeFloat32(data []byte) (float32, error) {
	if len(data) != 4 {
		return 0, pgerr.Newf(pgerr.ProtocolError, "float4 field has length %d, want 4", len(data))
	}
	return math.Float32frombits(binary.BigEndian.Uint32(data)), nil
}

func DecodeFloat64(data []byte) (float64, error) {
	if len(data) != 8 {
		return 0, pgerr.Newf(pgerr.ProtocolError, "float8 field has length %d, want 8", len(data))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(data)), nil
}

package pgwire

import (
	"encoding/binary"

	"github.com/danthegoodman1/pgscan/pgerr"
)

// ArrayElement is one decoded element of a one-dimensional array field,
// carrying its own null flag since array elements are independently
// nullable.
type ArrayElement struct {
	Data   []byte
	IsNull bool
}

// DecodeArrayEnvelope parses the one-dimensional array wire envelope:
// (u32 ndim_flag, u32 has_nulls_flag, u32 element_oid, u32 length,
// u32 lower_bound) followed by length-prefixed elements. The second flag
// word is read and deliberately never inspected — its meaning is
// undocumented upstream, so we skip over it without trusting any value it
// might carry.
func DecodeArrayEnvelope(data []byte, elementOID uint32) ([]ArrayElement, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) < 4 {
		return nil, pgerr.New(pgerr.ProtocolError, "array envelope truncated")
	}
	off := 0
	readU32 := func() uint32 {
		v := binary.BigEndian.Uint32(data[off : off+4])
		off += 4
		return v
	}

	ndimFlag := readU32()
	if ndimFlag == 0 {
		// Empty array: zero dimensions means no dimension-length pair
		// follows, so there is nothing else in the envelope worth
		// reading — the has-nulls flag and element OID that may trail
		// it are never consulted for an empty result.
		return nil, nil
	}
	if ndimFlag != 1 {
		return nil, pgerr.Newf(pgerr.UnsupportedType, "array dimensionality %d unsupported", ndimFlag)
	}
	if len(data) < 5*4 {
		return nil, pgerr.New(pgerr.ProtocolError, "array envelope truncated")
	}

	_ = readU32() // undocumented second flag word, parsed and skipped
	valueOID := readU32()
	if valueOID != elementOID {
		return nil, pgerr.Newf(pgerr.ProtocolError, "array element OID %d does not match descriptor OID %d", valueOID, elementOID)
	}
	length := readU32()
	_ = readU32() // lower bound, not meaningful for a freshly materialized chunk

	elements := make([]ArrayElement, 0, length)
	for i := uint32(0); i < length; i++ {
		if off+4 > len(data) {
			return nil, pgerr.New(pgerr.ProtocolError, "array element length truncated")
		}
		eleLen := int32(binary.BigEndian.Uint32(data[off : off+4]))
		off += 4
		if eleLen == -1 {
			elements = append(elements, ArrayElement{IsNull: true})
			continue
		}
		if eleLen < 0 || off+int(eleLen) > len(data) {
			return nil, pgerr.New(pgerr.ProtocolError, "array element truncated")
		}
		elements = append(elements, ArrayElement{Data: data[off : off+int(eleLen)]})
		off += int(eleLen)
	}
	return elements, nil
}

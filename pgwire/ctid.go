package pgwire

import "github.com/danthegoodman1/pgscan/pgerr"

// DecodeCtid synthesizes a row id from the 6-byte ctid wire value
// (u32 page, u16 tuple, both big-endian) as (page << 16) | tuple.
func DecodeCtid(data []byte) (int64, error) {
	if len(data) != 6 {
		return 0, pgerr.Newf(pgerr.ProtocolError, "ctid field has length %d, want 6", len(data))
	}
	page := beUint32(data[0:4])
	tuple := uint16(data[4])<<8 | uint16(data[5])
	return int64(page)<<16 | int64(tuple), nil
}

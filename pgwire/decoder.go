// Package pgwire decodes the remote server's binary COPY stream: header
// validation, tuple framing, per-field length-prefixed values, and the
// endian-aware primitive/numeric/date-time/array decoders needed to
// materialize a tuple into a columnar chunk.
package pgwire

import (
	"encoding/binary"
	"math"

	"github.com/danthegoodman1/pgscan/pgerr"
)

// MessageSource yields successive CopyData payloads from an open COPY
// stream. A nil, nil return means the stream ended without a trailer —
// callers should treat that as ProtocolError.
type MessageSource interface {
	NextMessage() ([]byte, error)
}

// Decoder is a cursor over the current COPY message buffer. It owns that
// buffer and replaces it wholesale on Reset, matching the spec's "holds
// current message buffer pointer, remaining length, and a cursor into it"
// invariant. Reads that stay within the current message are zero-copy;
// a read that straddles a message boundary pulls the next message from
// src and is satisfied by a single concatenation, which is the only case
// that copies.
type Decoder struct {
	src MessageSource
	buf []byte
	pos int
}

func NewDecoder(src MessageSource) *Decoder {
	return &Decoder{src: src}
}

// Reset discards the current buffer (allowing it to be GC'd) and installs
// buf as the new message, with the cursor at the given offset — used once
// after ParseHeader to skip past the header within the first message.
func (d *Decoder) Reset(buf []byte, offset int) {
	d.buf = buf
	d.pos = offset
}

func (d *Decoder) remaining() int {
	return len(d.buf) - d.pos
}

// ensure guarantees at least n unread bytes are available, pulling
// additional messages from src and splicing them onto the tail of the
// current buffer if necessary.
func (d *Decoder) ensure(n int) error {
	for d.remaining() < n {
		next, err := d.src.NextMessage()
		if err != nil {
			return err
		}
		if next == nil {
			return pgerr.New(pgerr.ProtocolError, "copy stream ended mid-tuple")
		}
		if d.pos == len(d.buf) {
			// Fast path: previous buffer fully drained, no splice needed.
			d.buf = next
			d.pos = 0
			continue
		}
		d.buf = append(d.buf[d.pos:], next...)
		d.pos = 0
	}
	return nil
}

func (d *Decoder) take(n int) ([]byte, error) {
	if err := d.ensure(n); err != nil {
		return nil, err
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *Decoder) ReadInt16() (int16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

func (d *Decoder) ReadUint16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *Decoder) ReadInt32() (int32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (d *Decoder) ReadUint32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *Decoder) ReadInt64() (int64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func (d *Decoder) ReadUint64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (d *Decoder) ReadFloat32() (float32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
}

func (d *Decoder) ReadFloat64() (float64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

// ReadBytes returns the next n raw bytes, zero-copy when n fits within the
// current message.
func (d *Decoder) ReadBytes(n int) ([]byte, error) {
	return d.take(n)
}

func beUint32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

// FieldCount reads the i16 tuple header. -1 signals the COPY trailer.
func (d *Decoder) FieldCount() (int16, error) {
	return d.ReadInt16()
}

// Field reads one length-prefixed field: a -1 length means NULL and no
// payload bytes follow.
func (d *Decoder) Field() (data []byte, isNull bool, err error) {
	length, err := d.ReadInt32()
	if err != nil {
		return nil, false, err
	}
	if length == -1 {
		return nil, true, nil
	}
	if length < 0 {
		return nil, false, pgerr.Newf(pgerr.ProtocolError, "negative field length %d", length)
	}
	b, err := d.ReadBytes(int(length))
	if err != nil {
		return nil, false, err
	}
	return b, false, nil
}

package pgwire

import (
	"encoding/binary"
	"testing"
)

func putU32(buf []byte, v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return append(buf, b...)
}

func TestDecodeArrayEnvelopeEmpty(t *testing.T) {
	elems, err := DecodeArrayEnvelope(nil, 23)
	if err != nil || elems != nil {
		t.Fatalf("got (%v, %v), want (nil, nil)", elems, err)
	}
}

func TestDecodeArrayEnvelopeZeroFlag(t *testing.T) {
	var buf []byte
	buf = putU32(buf, 0) // ndim_flag == 0 -> empty
	buf = putU32(buf, 1) // undocumented second flag, ignored
	elems, err := DecodeArrayEnvelope(buf, 23)
	if err != nil || elems != nil {
		t.Fatalf("got (%v, %v), want (nil, nil)", elems, err)
	}
}

func TestDecodeArrayEnvelopeTwoElements(t *testing.T) {
	var buf []byte
	buf = putU32(buf, 1)  // ndim_flag
	buf = putU32(buf, 99) // undocumented flag, must be ignored regardless of value
	buf = putU32(buf, 23) // element OID (int4)
	buf = putU32(buf, 2)  // length
	buf = putU32(buf, 1)  // lower bound

	buf = putU32(buf, 4)
	buf = append(buf, 0, 0, 0, 7) // element 0 = 7

	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, 0xFFFFFFFF) // -1 as i32
	buf = append(buf, b...)                   // element 1 = NULL

	elems, err := DecodeArrayEnvelope(buf, 23)
	if err != nil {
		t.Fatalf("DecodeArrayEnvelope: %v", err)
	}
	if len(elems) != 2 {
		t.Fatalf("got %d elements, want 2", len(elems))
	}
	if elems[0].IsNull || binary.BigEndian.Uint32(elems[0].Data) != 7 {
		t.Fatalf("element 0 = %+v, want 7", elems[0])
	}
	if !elems[1].IsNull {
		t.Fatalf("element 1 = %+v, want NULL", elems[1])
	}
}

func TestDecodeArrayEnvelopeDimensionMismatch(t *testing.T) {
	var buf []byte
	buf = putU32(buf, 2) // unsupported dimensionality
	buf = putU32(buf, 0)
	buf = putU32(buf, 23)
	buf = putU32(buf, 0)
	buf = putU32(buf, 1)
	if _, err := DecodeArrayEnvelope(buf, 23); err == nil {
		t.Fatal("expected error for ndim_flag != 1")
	}
}

func TestDecodeArrayEnvelopeOIDMismatch(t *testing.T) {
	var buf []byte
	buf = putU32(buf, 1)
	buf = putU32(buf, 0)
	buf = putU32(buf, 25) // text OID, mismatched
	buf = putU32(buf, 0)
	buf = putU32(buf, 1)
	if _, err := DecodeArrayEnvelope(buf, 23); err == nil {
		t.Fatal("expected error for element OID mismatch")
	}
}

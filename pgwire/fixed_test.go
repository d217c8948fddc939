package pgwire

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestDecodeBool(t *testing.T) {
	got, err := DecodeBool([]byte{1})
	if err != nil || !got {
		t.Fatalf("got (%v, %v)", got, err)
	}
}

func TestDecodeInt32(t *testing.T) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(int32(-7)))
	got, err := DecodeInt32(buf)
	if err != nil || got != -7 {
		t.Fatalf("got (%v, %v)", got, err)
	}
}

func TestDecodeFloat64(t *testing.T) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, math.Float64bits(3.5))
	got, err := DecodeFloat64(buf)
	if err != nil || got != 3.5 {
		t.Fatalf("got (%v, %v)", got, err)
	}
}

func TestDecodeFixedRejectsWrongLength(t *testing.T) {
	if _, err := DecodeInt16([]byte{1}); err == nil {
		t.Fatal("expected error for short int2 payload")
	}
}

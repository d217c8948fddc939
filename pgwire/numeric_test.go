package pgwire

import (
	"encoding/binary"
	"testing"
)

// encodeNumeric builds the on-wire representation of a base-10000 numeric
// value for use as test fixtures, mirroring how the server itself would
// encode it.
func encodeNumeric(sign uint16, weight int16, scale uint16, digits []int16) []byte {
	buf := make([]byte, 8+2*len(digits))
	binary.BigEndian.PutUint16(buf[0:2], uint16(len(digits)))
	binary.BigEndian.PutUint16(buf[2:4], uint16(weight))
	binary.BigEndian.PutUint16(buf[4:6], sign)
	binary.BigEndian.PutUint16(buf[6:8], scale)
	for i, d := range digits {
		binary.BigEndian.PutUint16(buf[8+i*2:8+i*2+2], uint16(d))
	}
	return buf
}

func TestDecodeNumeric(t *testing.T) {
	cases := []struct {
		name   string
		wire   []byte
		scaled int64
		scale  uint16
	}{
		{"zero", encodeNumeric(numericPos, 0, 2, nil), 0, 2},
		{"1.23", encodeNumeric(numericPos, 0, 2, []int16{1, 2300}), 123, 2},
		{"-999.99", encodeNumeric(numericNeg, 0, 2, []int16{999, 9900}), -99999, 2},
		{"100", encodeNumeric(numericPos, 0, 0, []int16{100}), 100, 0},
		{"0.001", encodeNumeric(numericPos, -1, 3, []int16{10}), 1, 3},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := DecodeNumeric(c.wire)
			if err != nil {
				t.Fatalf("DecodeNumeric: %v", err)
			}
			if got.Scaled != c.scaled || got.Scale != c.scale {
				t.Fatalf("got {%d,%d}, want {%d,%d}", got.Scaled, got.Scale, c.scaled, c.scale)
			}
		})
	}
}

func TestDecodeNumericRejectsNaN(t *testing.T) {
	wire := encodeNumeric(numericNaN, 0, 0, nil)
	if _, err := DecodeNumeric(wire); err == nil {
		t.Fatal("expected error decoding NaN numeric")
	}
}

func TestDecimalTypmod(t *testing.T) {
	// numeric(10,2) encodes to atttypmod = ((10<<16)|2) + 4
	typmod := int32((10 << 16) | 2 + 4)
	width, scale := DecimalTypmod(typmod)
	if width != 10 || scale != 2 {
		t.Fatalf("got (%d,%d), want (10,2)", width, scale)
	}
}

func TestDecimalFloat64(t *testing.T) {
	d := Decimal{Scaled: 123, Scale: 2}
	if got := d.Float64(); got != 1.23 {
		t.Fatalf("got %v, want 1.23", got)
	}
}

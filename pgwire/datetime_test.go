package pgwire

import (
	"encoding/binary"
	"testing"
	"time"
)

func TestDecodeDate(t *testing.T) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, 1) // 1 day after PGEpoch
	got, err := DecodeDate(buf)
	if err != nil {
		t.Fatalf("DecodeDate: %v", err)
	}
	want := PGEpoch.AddDate(0, 0, 1)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDecodeTimestamp(t *testing.T) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(time.Second/time.Microsecond))
	got, err := DecodeTimestamp(buf)
	if err != nil {
		t.Fatalf("DecodeTimestamp: %v", err)
	}
	want := PGEpoch.Add(time.Second)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDecodeTimeTZ(t *testing.T) {
	buf := make([]byte, 12)
	binary.BigEndian.PutUint64(buf[0:8], 1_000_000) // 1 second in usec
	binary.BigEndian.PutUint32(buf[8:12], uint32(int32(-3600)))

	got, err := DecodeTimeTZ(buf)
	if err != nil {
		t.Fatalf("DecodeTimeTZ: %v", err)
	}
	want := int64(1_000_000) + int64(-3600)*1_000_000
	if got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}

func TestDecodeUUID(t *testing.T) {
	buf := make([]byte, 16)
	for i := range buf {
		buf[i] = byte(i)
	}
	got, err := DecodeUUID(buf)
	if err != nil {
		t.Fatalf("DecodeUUID: %v", err)
	}
	for i := range got {
		if got[i] != byte(i) {
			t.Fatalf("byte %d mismatch: got %d", i, got[i])
		}
	}
}

package pgwire

import "testing"

func TestDecodeCtid(t *testing.T) {
	data := []byte{0, 0, 0, 42, 0, 7}
	got, err := DecodeCtid(data)
	if err != nil {
		t.Fatalf("DecodeCtid: %v", err)
	}
	want := int64(42)<<16 | 7
	if got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}

func TestDecodeCtidRejectsWrongLength(t *testing.T) {
	if _, err := DecodeCtid([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short ctid payload")
	}
}

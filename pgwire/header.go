package pgwire

import (
	"bytes"

	"github.com/danthegoodman1/pgscan/pgerr"
)

// CopyHeaderSignature is the 11-byte magic that opens every binary COPY
// stream: "PGCOPY\n\xff\r\n\0".
var CopyHeaderSignature = []byte("PGCOPY\n\xff\r\n\x00")

// HeaderLen is the fixed portion of the COPY header: signature (11) + flags
// (4) + extension length (4). The extension payload itself is variable and
// follows immediately after.
var HeaderLen = len(CopyHeaderSignature) + 4 + 4

// ParseHeader validates the fixed 19-byte COPY header prefix of buf and
// returns the number of bytes consumed, including any header extension.
// The flags word and the extension payload are parsed only far enough to
// be skipped — their contents are opaque to this decoder.
func ParseHeader(buf []byte) (consumed int, err error) {
	if len(buf) < HeaderLen {
		return 0, pgerr.New(pgerr.ProtocolError, "copy header truncated")
	}
	if !bytes.Equal(buf[:len(CopyHeaderSignature)], CopyHeaderSignature) {
		return 0, pgerr.New(pgerr.ProtocolError, "copy header signature mismatch")
	}
	off := len(CopyHeaderSignature)
	off += 4 // flags, ignored
	extLen := int(beUint32(buf[off:]))
	off += 4
	if len(buf) < off+extLen {
		return 0, pgerr.New(pgerr.ProtocolError, "copy header extension truncated")
	}
	off += extLen
	return off, nil
}

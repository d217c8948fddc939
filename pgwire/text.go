package pgwire

import "github.com/danthegoodman1/pgscan/pgerr"

// DecodeJSONB strips and validates the 1-byte version prefix Postgres puts
// on binary jsonb values; only version 1 is understood, matching every
// Postgres release that speaks the v3 wire protocol.
func DecodeJSONB(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, pgerr.New(pgerr.ProtocolError, "jsonb field empty")
	}
	if data[0] != 1 {
		return nil, pgerr.Newf(pgerr.UnsupportedType, "jsonb version %d unsupported", data[0])
	}
	return data[1:], nil
}

// DecodeText and DecodeBlob are identity passthroughs: both TEXT and BLOB
// wire payloads are copied verbatim into target storage by the caller, so
// there is nothing to transform here — kept as named functions so the
// worker's per-target-type dispatch reads uniformly for every target type.
func DecodeText(data []byte) string {
	return string(data)
}

func DecodeBlob(data []byte) []byte {
	return data
}

package pgwire

import (
	"encoding/binary"

	"github.com/danthegoodman1/pgscan/pgerr"
)

// NBASE is the base of the digit groups used by the Postgres on-wire
// numeric format; DecDigits is how many decimal digits one NBASE digit
// represents (NBASE == 10^DecDigits).
const (
	NBASE     = 10000
	DecDigits = 4
)

const (
	numericPos  = 0x0000
	numericNeg  = 0x4000
	numericNaN  = 0xC000
	numericPInf = 0xD000
	numericNInf = 0xF000
)

var powersOfTen = [...]int64{
	1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000,
	1000000000, 10000000000, 100000000000, 1000000000000, 10000000000000,
	100000000000000, 1000000000000000, 10000000000000000,
	100000000000000000, 1000000000000000000,
}

// Decimal is the reconstructed value of a numeric field: Scaled holds the
// integer value scaled by 10^Scale, i.e. the real value is
// Scaled / 10^Scale.
type Decimal struct {
	Scaled int64
	Scale  uint16
}

// DecodeNumeric parses the Postgres binary numeric wire format:
// (u16 ndigits, i16 weight, u16 sign, u16 dscale) followed by ndigits
// base-NBASE digits, and reconstructs it as a fixed-point integer scaled
// to dscale decimal places.
func DecodeNumeric(data []byte) (Decimal, error) {
	if len(data) < 8 {
		return Decimal{}, pgerr.New(pgerr.ProtocolError, "numeric field truncated")
	}
	ndigits := binary.BigEndian.Uint16(data[0:2])
	weight := int16(binary.BigEndian.Uint16(data[2:4]))
	sign := binary.BigEndian.Uint16(data[4:6])
	scale := binary.BigEndian.Uint16(data[6:8])

	switch sign {
	case numericPos, numericNeg:
	case numericNaN, numericPInf, numericNInf:
		return Decimal{}, pgerr.New(pgerr.UnsupportedType, "numeric NaN/Infinity has no fixed-point representation")
	default:
		return Decimal{}, pgerr.Newf(pgerr.ProtocolError, "unrecognized numeric sign 0x%x", sign)
	}

	digitsOff := 8
	if len(data) < digitsOff+int(ndigits)*2 {
		return Decimal{}, pgerr.New(pgerr.ProtocolError, "numeric digits truncated")
	}
	digit := func(i int) int64 {
		return int64(binary.BigEndian.Uint16(data[digitsOff+i*2 : digitsOff+i*2+2]))
	}

	if ndigits == 0 {
		return Decimal{Scaled: 0, Scale: scale}, nil
	}

	scalePower := pow10(int(scale))

	var integral int64
	if weight >= 0 {
		integral = digit(0)
		for i := 1; i <= int(weight); i++ {
			integral *= NBASE
			if i < int(ndigits) {
				integral += digit(i)
			}
		}
		integral *= scalePower
	}

	var fractional int64
	if int(ndigits) > int(weight)+1 {
		fractional = digit(int(weight) + 1)
		for i := int(weight) + 2; i < int(ndigits); i++ {
			fractional *= NBASE
			fractional += digit(i)
		}

		fractionalPower := (int(ndigits) - int(weight) - 1) * DecDigits
		correction := fractionalPower - int(scale)
		if correction >= 0 {
			fractional /= pow10(correction)
		} else {
			fractional *= pow10(-correction)
		}
	}

	scaled := integral + fractional
	if sign == numericNeg {
		scaled = -scaled
	}
	return Decimal{Scaled: scaled, Scale: scale}, nil
}

func pow10(n int) int64 {
	if n < 0 || n >= len(powersOfTen) {
		return 0
	}
	return powersOfTen[n]
}

// Float64 renders the decimal as a float64, used for numeric columns
// mapped to F64 (typmod == -1).
func (d Decimal) Float64() float64 {
	return float64(d.Scaled) / float64(pow10(int(d.Scale)))
}

// DecimalTypmod extracts (width, scale) from a numeric column's atttypmod,
// per the Postgres on-disk encoding: width = ((typmod-4)>>16)&0xFFFF,
// scale = (((typmod-4)&0x7FF) XOR 1024) - 1024.
func DecimalTypmod(typmod int32) (width, scale int) {
	width = int(((typmod - 4) >> 16) & 0xFFFF)
	scale = int((((typmod - 4) & 0x7FF) ^ 1024) - 1024)
	return
}

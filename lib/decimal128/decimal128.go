// Package decimal128 implements BSON Decimal128 value - IEEE 754-2008 128-bit decimal floating point number.
//
// The value is kept as an opaque 16-byte payload. Only conversion from and to string is supported.
package decimal128

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/VictoriaMetrics/bson/lib/encoding"
)

// Size is the size of Decimal128 payload in bytes.
const Size = 16

// Decimal128 holds 16 bytes of IEEE 754-2008 decimal128 value in BSON byte order,
// i.e. the low 64 bits go first, both halves are little-endian.
type Decimal128 [Size]byte

// New returns Decimal128 composed of the given high and low 64-bit halves.
func New(high, low uint64) Decimal128 {
	var d Decimal128
	encoding.PutInt32LE(d[:], 0, int32(low))
	encoding.PutInt32LE(d[:], 4, int32(low>>32))
	encoding.PutInt32LE(d[:], 8, int32(high))
	encoding.PutInt32LE(d[:], 12, int32(high>>32))
	return d
}

// FromBytes returns Decimal128 from 16 bytes in b.
func FromBytes(b []byte) (Decimal128, error) {
	var d Decimal128
	if len(b) != Size {
		return d, fmt.Errorf("%w: Decimal128 must contain %d bytes; got %d bytes", encoding.ErrInvalidArgument, Size, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// Parse parses Decimal128 from its string representation such as "1.5E+3", "-0.00", "NaN" or "-Infinity".
func Parse(s string) (Decimal128, error) {
	p, err := primitive.ParseDecimal128(s)
	if err != nil {
		return Decimal128{}, fmt.Errorf("%w: cannot parse %q as Decimal128: %s", encoding.ErrInvalidArgument, s, err)
	}
	return fromPrimitive(p), nil
}

// MustParse is like Parse, but panics on error.
func MustParse(s string) Decimal128 {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Low returns the low 64 bits of d.
func (d Decimal128) Low() uint64 {
	return encoding.UnmarshalUint64LE(d[:8])
}

// High returns the high 64 bits of d.
func (d Decimal128) High() uint64 {
	return encoding.UnmarshalUint64LE(d[8:])
}

// Bytes returns a copy of d payload.
func (d Decimal128) Bytes() []byte {
	return append([]byte(nil), d[:]...)
}

// String returns canonical string representation of d.
func (d Decimal128) String() string {
	return toPrimitive(d).String()
}

// IsNaN returns true if d is NaN.
func (d Decimal128) IsNaN() bool {
	return toPrimitive(d).IsNaN()
}

// IsInf returns 1 for positive infinity, -1 for negative infinity and 0 otherwise.
func (d Decimal128) IsInf() int {
	return toPrimitive(d).IsInf()
}

func toPrimitive(d Decimal128) primitive.Decimal128 {
	return primitive.NewDecimal128(d.High(), d.Low())
}

func fromPrimitive(p primitive.Decimal128) Decimal128 {
	high, low := p.GetBytes()
	return New(high, low)
}

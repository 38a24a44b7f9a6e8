// Package long implements 64-bit two's-complement integers used by BSON Int64 and Timestamp values.
//
// Long keeps the signedness next to the bits, since the same bits compare and print
// differently depending on whether the value is signed or unsigned.
package long

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"

	"github.com/VictoriaMetrics/bson/lib/logger"
)

// Long is a 64-bit integer with an explicit signedness flag.
//
// All the arithmetic operations wrap around exactly like two's-complement 64-bit integers.
// The zero value is signed zero.
type Long struct {
	bits     uint64
	unsigned bool
}

// Frequently used values.
var (
	Zero             = Long{}
	UZero            = Long{unsigned: true}
	One              = Long{bits: 1}
	UOne             = Long{bits: 1, unsigned: true}
	NegOne           = Long{bits: math.MaxUint64}
	MaxValue         = Long{bits: math.MaxInt64}
	MinValue         = Long{bits: 1 << 63}
	MaxUnsignedValue = Long{bits: math.MaxUint64, unsigned: true}
)

const (
	twoPwr63 = 1 << 63
	twoPwr64 = twoPwr63 * 2

	maxSafeInteger = 1<<53 - 1
)

// FromBits returns Long composed of the given low and high 32-bit halves.
func FromBits(low, high int32, unsigned bool) Long {
	return Long{
		bits:     uint64(uint32(high))<<32 | uint64(uint32(low)),
		unsigned: unsigned,
	}
}

// FromInt64 returns signed Long for v.
func FromInt64(v int64) Long {
	return Long{bits: uint64(v)}
}

// FromUint64 returns unsigned Long for v.
func FromUint64(v uint64) Long {
	return Long{bits: v, unsigned: true}
}

// FromInt returns Long for 32-bit v.
//
// v is sign-extended for signed result and zero-extended for unsigned result.
func FromInt(v int32, unsigned bool) Long {
	if unsigned {
		return Long{bits: uint64(uint32(v)), unsigned: true}
	}
	return Long{bits: uint64(int64(v))}
}

// FromNumber returns Long for f.
//
// The fractional part of f is truncated. Non-finite f is converted to zero,
// while finite f outside the representable range saturates to the minimum or maximum value.
func FromNumber(f float64, unsigned bool) Long {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Long{unsigned: unsigned}
	}
	if unsigned {
		if f < 0 {
			return UZero
		}
		if f >= twoPwr64 {
			return MaxUnsignedValue
		}
		return Long{bits: uint64(f), unsigned: true}
	}
	if f <= -twoPwr63 {
		return MinValue
	}
	if f+1 >= twoPwr63 {
		return MaxValue
	}
	return Long{bits: uint64(int64(f))}
}

// FromString parses s in the given radix.
//
// The leading '-' is allowed for both signed and unsigned results; the value wraps around in the latter case.
// "NaN", "Infinity", "+Infinity" and "-Infinity" are parsed as zero.
func FromString(s string, radix int, unsigned bool) (Long, error) {
	if s == "" {
		return Zero, fmt.Errorf("cannot parse empty string as Long")
	}
	switch s {
	case "NaN", "Infinity", "+Infinity", "-Infinity":
		return Long{unsigned: unsigned}, nil
	}
	if radix < 2 || radix > 36 {
		return Zero, fmt.Errorf("radix must be in the range [2..36]; got %d", radix)
	}

	if strings.HasPrefix(s, "-") {
		if strings.HasPrefix(s[1:], "-") {
			return Zero, fmt.Errorf("cannot parse %q as Long: unexpected '-'", s)
		}
		v, err := FromString(s[1:], radix, unsigned)
		if err != nil {
			return Zero, err
		}
		return v.Negate(), nil
	}

	var u uint64
	r := uint64(radix)
	for i := 0; i < len(s); i++ {
		d := digitValue(s[i])
		if d >= r {
			return Zero, fmt.Errorf("cannot parse %q as Long in radix %d: unexpected char %q at position %d", s, radix, s[i], i)
		}
		u = u*r + d
	}
	return Long{bits: u, unsigned: unsigned}, nil
}

// MustFromString is like FromString, but panics on error.
//
// It is intended for constants and tests.
func MustFromString(s string, radix int, unsigned bool) Long {
	v, err := FromString(s, radix, unsigned)
	if err != nil {
		logger.Panicf("BUG: %s", err)
	}
	return v
}

func digitValue(c byte) uint64 {
	switch {
	case c >= '0' && c <= '9':
		return uint64(c - '0')
	case c >= 'a' && c <= 'z':
		return uint64(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return uint64(c-'A') + 10
	default:
		return math.MaxUint64
	}
}

// Low returns the low 32 bits of l.
func (l Long) Low() int32 {
	return int32(uint32(l.bits))
}

// High returns the high 32 bits of l.
func (l Long) High() int32 {
	return int32(uint32(l.bits >> 32))
}

// Unsigned returns true if l is unsigned.
func (l Long) Unsigned() bool {
	return l.unsigned
}

// Bits returns the raw 64 bits of l.
func (l Long) Bits() uint64 {
	return l.bits
}

// Int64 returns l bits interpreted as int64.
func (l Long) Int64() int64 {
	return int64(l.bits)
}

// Uint64 returns l bits interpreted as uint64.
func (l Long) Uint64() uint64 {
	return l.bits
}

// ToInt returns the low 32 bits of l as int32.
func (l Long) ToInt() int32 {
	return l.Low()
}

// ToNumber returns the nearest float64 to l.
//
// The result is exact only for values within the safe integer range, see IsSafeInteger.
func (l Long) ToNumber() float64 {
	if l.unsigned {
		return float64(l.bits)
	}
	return float64(int64(l.bits))
}

// IsSafeInteger returns true if l can be represented by float64 without precision loss,
// i.e. it is in the range [-(2^53-1) .. 2^53-1].
func (l Long) IsSafeInteger() bool {
	if l.unsigned {
		return l.bits <= maxSafeInteger
	}
	v := int64(l.bits)
	return v >= -maxSafeInteger && v <= maxSafeInteger
}

// ToSigned returns signed Long with the same bits as l.
func (l Long) ToSigned() Long {
	return Long{bits: l.bits}
}

// ToUnsigned returns unsigned Long with the same bits as l.
func (l Long) ToUnsigned() Long {
	return Long{bits: l.bits, unsigned: true}
}

// IsZero returns true if l is zero.
func (l Long) IsZero() bool {
	return l.bits == 0
}

// IsNegative returns true if l is signed and negative.
func (l Long) IsNegative() bool {
	return !l.unsigned && int64(l.bits) < 0
}

// IsPositive returns true if l is unsigned or non-negative.
//
// Zero is positive in this sense.
func (l Long) IsPositive() bool {
	return l.unsigned || int64(l.bits) >= 0
}

// IsOdd returns true if l is odd.
func (l Long) IsOdd() bool {
	return l.bits&1 == 1
}

// IsEven returns true if l is even.
func (l Long) IsEven() bool {
	return l.bits&1 == 0
}

// Equals returns true if l and o represent the same value.
//
// Signed and unsigned values with the highest bit set are never equal,
// since they are on the opposite sides of zero.
func (l Long) Equals(o Long) bool {
	if l.unsigned != o.unsigned && l.bits>>63 == 1 && o.bits>>63 == 1 {
		return false
	}
	return l.bits == o.bits
}

// NotEquals returns !l.Equals(o).
func (l Long) NotEquals(o Long) bool {
	return !l.Equals(o)
}

// Compare returns -1, 0 or 1 if l is smaller, equal or bigger than o.
//
// Values are compared as unsigned if any of them is unsigned, while negative signed values
// are always smaller than unsigned values.
func (l Long) Compare(o Long) int {
	if l.Equals(o) {
		return 0
	}
	lNeg := l.IsNegative()
	oNeg := o.IsNegative()
	if lNeg && !oNeg {
		return -1
	}
	if !lNeg && oNeg {
		return 1
	}
	if !l.unsigned && !o.unsigned {
		if int64(l.bits) < int64(o.bits) {
			return -1
		}
		return 1
	}
	if l.bits < o.bits {
		return -1
	}
	return 1
}

// LessThan returns true if l < o.
func (l Long) LessThan(o Long) bool {
	return l.Compare(o) < 0
}

// LessThanOrEqual returns true if l <= o.
func (l Long) LessThanOrEqual(o Long) bool {
	return l.Compare(o) <= 0
}

// GreaterThan returns true if l > o.
func (l Long) GreaterThan(o Long) bool {
	return l.Compare(o) > 0
}

// GreaterThanOrEqual returns true if l >= o.
func (l Long) GreaterThanOrEqual(o Long) bool {
	return l.Compare(o) >= 0
}

// Negate returns -l. The signedness of l is preserved.
func (l Long) Negate() Long {
	return Long{bits: -l.bits, unsigned: l.unsigned}
}

// Add returns l+o with the signedness of l.
func (l Long) Add(o Long) Long {
	return Long{bits: l.bits + o.bits, unsigned: l.unsigned}
}

// Subtract returns l-o with the signedness of l.
func (l Long) Subtract(o Long) Long {
	return Long{bits: l.bits - o.bits, unsigned: l.unsigned}
}

// Multiply returns l*o with the signedness of l.
func (l Long) Multiply(o Long) Long {
	return Long{bits: l.bits * o.bits, unsigned: l.unsigned}
}

// ErrDivisionByZero is returned from Divide and Modulo when the divisor is zero.
var ErrDivisionByZero = errors.New("division by zero")

// Divide returns l/o with the signedness of l.
//
// The quotient is truncated toward zero. Division is unsigned if l is unsigned.
// MinValue divided by -1 wraps around to MinValue.
func (l Long) Divide(o Long) (Long, error) {
	if o.bits == 0 {
		return Zero, ErrDivisionByZero
	}
	if l.unsigned {
		return Long{bits: l.bits / o.bits, unsigned: true}, nil
	}
	return Long{bits: uint64(int64(l.bits) / int64(o.bits))}, nil
}

// Modulo returns l%o with the signedness of l.
//
// The result has the sign of l, so l == l/o*o + l%o.
func (l Long) Modulo(o Long) (Long, error) {
	if o.bits == 0 {
		return Zero, ErrDivisionByZero
	}
	if l.unsigned {
		return Long{bits: l.bits % o.bits, unsigned: true}, nil
	}
	return Long{bits: uint64(int64(l.bits) % int64(o.bits))}, nil
}

// Not returns ^l.
func (l Long) Not() Long {
	return Long{bits: ^l.bits, unsigned: l.unsigned}
}

// And returns l&o.
func (l Long) And(o Long) Long {
	return Long{bits: l.bits & o.bits, unsigned: l.unsigned}
}

// Or returns l|o.
func (l Long) Or(o Long) Long {
	return Long{bits: l.bits | o.bits, unsigned: l.unsigned}
}

// Xor returns l^o.
func (l Long) Xor(o Long) Long {
	return Long{bits: l.bits ^ o.bits, unsigned: l.unsigned}
}

// ShiftLeft returns l << (numBits % 64).
func (l Long) ShiftLeft(numBits uint) Long {
	return Long{bits: l.bits << (numBits & 63), unsigned: l.unsigned}
}

// ShiftRight returns l >> (numBits % 64) with sign propagation.
//
// The highest bit is propagated for unsigned values too.
func (l Long) ShiftRight(numBits uint) Long {
	return Long{bits: uint64(int64(l.bits) >> (numBits & 63)), unsigned: l.unsigned}
}

// ShiftRightUnsigned returns l >> (numBits % 64) with zero fill.
func (l Long) ShiftRightUnsigned(numBits uint) Long {
	return Long{bits: l.bits >> (numBits & 63), unsigned: l.unsigned}
}

// NumBitsAbs returns the number of bits needed for representing the absolute value of l.
func (l Long) NumBitsAbs() int {
	if l.IsNegative() {
		if l.bits == MinValue.bits {
			return 64
		}
		return l.Negate().NumBitsAbs()
	}
	if l.bits == 0 {
		return 1
	}
	return bits.Len64(l.bits)
}

// ToString returns string representation of l in the given radix.
//
// radix must be in the range [2..36].
func (l Long) ToString(radix int) string {
	if radix < 2 || radix > 36 {
		logger.Panicf("BUG: radix must be in the range [2..36]; got %d", radix)
	}
	if l.unsigned {
		return strconv.FormatUint(l.bits, radix)
	}
	return strconv.FormatInt(int64(l.bits), radix)
}

// AppendDecimal appends decimal representation of l to dst.
func (l Long) AppendDecimal(dst []byte) []byte {
	if l.unsigned {
		return strconv.AppendUint(dst, l.bits, 10)
	}
	return strconv.AppendInt(dst, int64(l.bits), 10)
}

// String implements fmt.Stringer.
func (l Long) String() string {
	return l.ToString(10)
}

package encoding

import (
	"math"
	"strconv"
)

// AppendFloat64 appends the shortest decimal representation of f to dst
// in the format used by ECMAScript Number.prototype.toString:
//
//   - integers below 1e21 are written without exponent and fractional part;
//   - numbers in the range [1e-6, 1e21) are written in plain decimal notation;
//   - other numbers are written in exponent notation without leading zeros in the exponent, e.g. 1e+21 or 1.5e-7.
//
// Negative zero is written as 0. NaN and infinities are written as NaN, Infinity and -Infinity.
func AppendFloat64(dst []byte, f float64) []byte {
	switch {
	case math.IsNaN(f):
		return append(dst, "NaN"...)
	case math.IsInf(f, 1):
		return append(dst, "Infinity"...)
	case math.IsInf(f, -1):
		return append(dst, "-Infinity"...)
	case f == 0:
		return append(dst, '0')
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.AppendFloat(dst, f, 'f', -1, 64)
	}

	n := len(dst)
	dst = strconv.AppendFloat(dst, f, 'e', -1, 64)
	// strconv writes at least two exponent digits, while ECMAScript doesn't pad the exponent.
	for i := n; i < len(dst); i++ {
		if dst[i] != 'e' {
			continue
		}
		expStart := i + 2
		j := expStart
		for j < len(dst)-1 && dst[j] == '0' {
			j++
		}
		return append(dst[:expStart], dst[j:]...)
	}
	return dst
}

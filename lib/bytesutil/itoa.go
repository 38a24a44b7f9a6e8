package bytesutil

import (
	"strconv"
)

// Itoa returns string representation of n.
//
// Strings for small non-negative n are pre-allocated, since they are used
// as array keys in every encoded and decoded array.
func Itoa(n int) string {
	if n >= 0 && n < len(smallInts) {
		return smallInts[n]
	}
	return strconv.Itoa(n)
}

// AppendItoa appends string representation of n to dst.
func AppendItoa(dst []byte, n int) []byte {
	if n >= 0 && n < len(smallInts) {
		return append(dst, smallInts[n]...)
	}
	return strconv.AppendInt(dst, int64(n), 10)
}

var smallInts = func() []string {
	a := make([]string, 1024)
	for i := range a {
		a[i] = strconv.Itoa(i)
	}
	return a
}()

package encoding

import (
	"strconv"
	"strings"
)

// MarshalCString appends s followed by 0x00 to dst.
//
// ErrInvalidCString is returned if s contains 0x00, since such a string cannot be decoded back.
func MarshalCString(dst []byte, s string) ([]byte, error) {
	if n := strings.IndexByte(s, 0); n >= 0 {
		return dst, &Error{
			Kind:   ErrInvalidCString,
			Offset: -1,
			Msg:    "cstring cannot contain 0x00 byte at position " + strconv.Itoa(n),
		}
	}
	dst = append(dst, s...)
	return append(dst, 0), nil
}

// MarshalString appends BSON string representation of s to dst:
// int32 length including the terminator, the bytes of s and 0x00.
//
// Unlike cstring, s may contain 0x00 bytes.
func MarshalString(dst []byte, s string) []byte {
	dst = MarshalInt32LE(dst, int32(len(s)+1))
	dst = append(dst, s...)
	return append(dst, 0)
}

// MarshalBytesString is like MarshalString, but accepts b instead of a string.
func MarshalBytesString(dst, b []byte) []byte {
	dst = MarshalInt32LE(dst, int32(len(b)+1))
	dst = append(dst, b...)
	return append(dst, 0)
}

// CStringSize returns the number of bytes needed for marshaling s as cstring.
func CStringSize(s string) int {
	return len(s) + 1
}

// StringSize returns the number of bytes needed for marshaling s as BSON string.
func StringSize(s string) int {
	return 4 + len(s) + 1
}

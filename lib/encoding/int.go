package encoding

import (
	"encoding/binary"
	"math"
)

// All the multi-byte numbers in BSON are little-endian.

// MarshalInt32LE appends little-endian v to dst and returns the result.
func MarshalInt32LE(dst []byte, v int32) []byte {
	return MarshalUint32LE(dst, uint32(v))
}

// UnmarshalInt32LE returns little-endian int32 from src.
//
// src must contain at least 4 bytes.
func UnmarshalInt32LE(src []byte) int32 {
	return int32(binary.LittleEndian.Uint32(src))
}

// MarshalUint32LE appends little-endian u to dst and returns the result.
func MarshalUint32LE(dst []byte, u uint32) []byte {
	return append(dst, byte(u), byte(u>>8), byte(u>>16), byte(u>>24))
}

// UnmarshalUint32LE returns little-endian uint32 from src.
func UnmarshalUint32LE(src []byte) uint32 {
	// This is faster than the manual conversion.
	return binary.LittleEndian.Uint32(src)
}

// MarshalInt64LE appends little-endian v to dst and returns the result.
func MarshalInt64LE(dst []byte, v int64) []byte {
	return MarshalUint64LE(dst, uint64(v))
}

// UnmarshalInt64LE returns little-endian int64 from src.
func UnmarshalInt64LE(src []byte) int64 {
	return int64(binary.LittleEndian.Uint64(src))
}

// MarshalUint64LE appends little-endian u to dst and returns the result.
func MarshalUint64LE(dst []byte, u uint64) []byte {
	return append(dst, byte(u), byte(u>>8), byte(u>>16), byte(u>>24), byte(u>>32), byte(u>>40), byte(u>>48), byte(u>>56))
}

// UnmarshalUint64LE returns little-endian uint64 from src.
func UnmarshalUint64LE(src []byte) uint64 {
	return binary.LittleEndian.Uint64(src)
}

// MarshalDoubleLE appends IEEE-754 binary64 representation of f to dst.
//
// NaN payloads and the sign of zero are preserved.
func MarshalDoubleLE(dst []byte, f float64) []byte {
	return MarshalUint64LE(dst, math.Float64bits(f))
}

// UnmarshalDoubleLE returns float64 from little-endian IEEE-754 bytes in src.
func UnmarshalDoubleLE(src []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(src))
}

// PutInt32LE writes v at dst[offset:offset+4].
//
// It is used for back-patching length prefixes after the payload is written.
func PutInt32LE(dst []byte, offset int, v int32) {
	binary.LittleEndian.PutUint32(dst[offset:offset+4], uint32(v))
}

package encoding

import (
	"bytes"
	"unicode/utf8"
)

// The ReadXxx functions read a value at src[offset:] and return it together with the offset
// of the next byte. They never read past len(src).

// ReadByte reads a single byte at src[offset].
func ReadByte(src []byte, offset int) (byte, int, error) {
	if offset < 0 || offset >= len(src) {
		return 0, offset, truncated(src, offset, 1)
	}
	return src[offset], offset + 1, nil
}

// ReadInt32 reads little-endian int32 at src[offset:].
func ReadInt32(src []byte, offset int) (int32, int, error) {
	if offset < 0 || len(src)-offset < 4 {
		return 0, offset, truncated(src, offset, 4)
	}
	return UnmarshalInt32LE(src[offset:]), offset + 4, nil
}

// ReadUint32 reads little-endian uint32 at src[offset:].
func ReadUint32(src []byte, offset int) (uint32, int, error) {
	if offset < 0 || len(src)-offset < 4 {
		return 0, offset, truncated(src, offset, 4)
	}
	return UnmarshalUint32LE(src[offset:]), offset + 4, nil
}

// ReadInt64 reads little-endian int64 at src[offset:].
func ReadInt64(src []byte, offset int) (int64, int, error) {
	if offset < 0 || len(src)-offset < 8 {
		return 0, offset, truncated(src, offset, 8)
	}
	return UnmarshalInt64LE(src[offset:]), offset + 8, nil
}

// ReadUint64 reads little-endian uint64 at src[offset:].
func ReadUint64(src []byte, offset int) (uint64, int, error) {
	if offset < 0 || len(src)-offset < 8 {
		return 0, offset, truncated(src, offset, 8)
	}
	return UnmarshalUint64LE(src[offset:]), offset + 8, nil
}

// ReadDouble reads little-endian IEEE-754 binary64 at src[offset:].
func ReadDouble(src []byte, offset int) (float64, int, error) {
	if offset < 0 || len(src)-offset < 8 {
		return 0, offset, truncated(src, offset, 8)
	}
	return UnmarshalDoubleLE(src[offset:]), offset + 8, nil
}

// ReadBytes returns n bytes at src[offset:].
//
// The returned slice refers to src.
func ReadBytes(src []byte, offset, n int) ([]byte, int, error) {
	if offset < 0 || n < 0 || len(src)-offset < n {
		return nil, offset, truncated(src, offset, n)
	}
	return src[offset : offset+n], offset + n, nil
}

// ReadCString reads 0x00-terminated UTF-8 string at src[offset:].
//
// The returned slice refers to src and doesn't include the terminator.
func ReadCString(src []byte, offset int) ([]byte, int, error) {
	if offset < 0 || offset > len(src) {
		return nil, offset, truncated(src, offset, 1)
	}
	n := bytes.IndexByte(src[offset:], 0)
	if n < 0 {
		return nil, offset, NewDecodeError(ErrInvalidCString, offset, "missing 0x00 terminator within the remaining %d bytes", len(src)-offset)
	}
	s := src[offset : offset+n]
	if !utf8.Valid(s) {
		return nil, offset, NewDecodeError(ErrInvalidUtf8, offset, "cstring contains invalid utf-8 sequence")
	}
	return s, offset + n + 1, nil
}

// ReadString reads BSON string at src[offset:]: int32 length including the terminator,
// UTF-8 bytes and 0x00.
//
// The returned slice refers to src and doesn't include the terminator.
func ReadString(src []byte, offset int) ([]byte, int, error) {
	s, next, err := ReadStringNoValidate(src, offset)
	if err != nil {
		return nil, offset, err
	}
	if !utf8.Valid(s) {
		return nil, offset, NewDecodeError(ErrInvalidUtf8, offset+4, "string contains invalid utf-8 sequence")
	}
	return s, next, nil
}

// ReadStringNoValidate is like ReadString, but doesn't check the string for valid UTF-8.
func ReadStringNoValidate(src []byte, offset int) ([]byte, int, error) {
	size, next, err := ReadInt32(src, offset)
	if err != nil {
		return nil, offset, err
	}
	if size < 1 {
		return nil, offset, NewDecodeError(ErrMalformedSize, offset, "string size must be at least 1; got %d", size)
	}
	if int64(size) > int64(len(src)-next) {
		return nil, offset, NewDecodeError(ErrTruncatedBuffer, offset, "string size %d exceeds the remaining %d bytes", size, len(src)-next)
	}
	end := next + int(size)
	if src[end-1] != 0 {
		return nil, offset, NewDecodeError(ErrMalformedSize, offset, "string of size %d isn't terminated by 0x00", size)
	}
	return src[next : end-1], end, nil
}

func truncated(src []byte, offset, n int) error {
	return NewDecodeError(ErrTruncatedBuffer, offset, "cannot read %d bytes from buffer of length %d", n, len(src))
}

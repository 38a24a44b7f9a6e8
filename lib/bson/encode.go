package bson

import (
	"strings"
	"unicode/utf8"

	"github.com/VictoriaMetrics/bson/lib/bytesutil"
	"github.com/VictoriaMetrics/bson/lib/encoding"
)

var scratchPool bytesutil.ByteBufferPool

func getScratch(opts *SerializeOptions) *bytesutil.ByteBuffer {
	bb := scratchPool.Get()
	if opts != nil && opts.MinInternalBufferSize > 0 {
		bb.Grow(opts.MinInternalBufferSize)
	}
	return bb
}

// Serialize returns BSON representation of the document v.
//
// v may be Document, DBRef, RawDocument, map with string keys, struct, Array, slice or a pointer to any of these.
// Arrays and slices are encoded as documents with decimal index keys.
func Serialize(v any, opts *SerializeOptions) ([]byte, error) {
	bb := getScratch(opts)
	defer scratchPool.Put(bb)

	var err error
	bb.B, err = appendDocument(bb.B[:0], v, opts)
	if err != nil {
		return nil, err
	}
	return append([]byte{}, bb.B...), nil
}

// SerializeWithBufferAndIndex encodes v into buf starting at opts.Index.
//
// It returns the offset of the last written byte. ErrTruncatedBuffer is returned if buf has no room for the encoded document.
func SerializeWithBufferAndIndex(v any, buf []byte, opts *SerializeOptions) (int, error) {
	index := 0
	if opts != nil {
		index = opts.Index
	}
	if index < 0 || index > len(buf) {
		return 0, encoding.NewEncodeError(ErrInvalidArgument, "", "index %d is out of buffer bounds [0..%d]", index, len(buf))
	}

	bb := getScratch(opts)
	defer scratchPool.Put(bb)

	var err error
	bb.B, err = appendDocument(bb.B[:0], v, opts)
	if err != nil {
		return 0, err
	}
	n := len(bb.B)
	if len(buf)-index < n {
		err := encoding.NewEncodeError(ErrTruncatedBuffer, "", "cannot write %d bytes at index %d into buffer of %d bytes", n, index, len(buf))
		countError("encode", err)
		return 0, err
	}
	copy(buf[index:], bb.B)
	return index + n - 1, nil
}

// AppendDocument appends BSON representation of the document v to dst and returns the result.
//
// See Serialize for the list of supported v types.
func AppendDocument(dst []byte, v any, opts *SerializeOptions) ([]byte, error) {
	return appendDocument(dst, v, opts)
}

func appendDocument(dst []byte, v any, opts *SerializeOptions) ([]byte, error) {
	e := newEncoder(opts)
	dstLen := len(dst)
	dst, err := e.appendTopLevel(dst, v)
	if err != nil {
		countError("encode", err)
		return dst[:dstLen], err
	}
	encodedDocuments.Inc()
	encodedBytes.Add(len(dst) - dstLen)
	return dst, nil
}

func (e *encoder) appendTopLevel(dst []byte, v any) ([]byte, error) {
	tv, err := e.classifyTopLevel(v)
	if err != nil {
		return dst, err
	}
	if tv.raw && len(tv.b) > e.maxSize {
		return dst, e.errorf(ErrDocumentTooLarge, "document size %d exceeds %d bytes", len(tv.b), e.maxSize)
	}
	return e.appendValue(dst, tv)
}

func (e *encoder) classifyTopLevel(v any) (value, error) {
	tv, skip, err := e.classify(v, false)
	if err != nil {
		return tv, err
	}
	if skip || (tv.t != TypeDocument && tv.t != TypeArray) {
		return tv, e.errorf(ErrInvalidArgument, "cannot serialize %T as BSON document", v)
	}
	return tv, nil
}

func (e *encoder) appendValue(dst []byte, v value) ([]byte, error) {
	var err error
	switch v.t {
	case TypeDouble:
		dst = encoding.MarshalDoubleLE(dst, v.f)
	case TypeString, TypeSymbol, TypeCode:
		dst = encoding.MarshalString(dst, v.s)
	case TypeDocument, TypeArray:
		if v.raw {
			return append(dst, v.b...), nil
		}
		return e.appendDocument(dst, v)
	case TypeBinary:
		n := len(v.b)
		if v.sub == BinarySubtypeByteArray {
			dst = encoding.MarshalInt32LE(dst, int32(n+4))
			dst = append(dst, v.sub)
			dst = encoding.MarshalInt32LE(dst, int32(n))
		} else {
			dst = encoding.MarshalInt32LE(dst, int32(n))
			dst = append(dst, v.sub)
		}
		dst = append(dst, v.b...)
	case TypeObjectID:
		dst = append(dst, v.oid[:]...)
	case TypeBoolean:
		dst = append(dst, byte(v.i))
	case TypeDateTime, TypeInt64, TypeTimestamp:
		dst = encoding.MarshalInt64LE(dst, v.i)
	case TypeNull, TypeMinKey, TypeMaxKey:
	case TypeRegex:
		if dst, err = encoding.MarshalCString(dst, v.s); err != nil {
			return dst, e.errorf(ErrInvalidCString, "regular expression pattern must not contain null bytes")
		}
		if dst, err = encoding.MarshalCString(dst, v.options); err != nil {
			return dst, e.errorf(ErrInvalidCString, "regular expression options must not contain null bytes")
		}
	case TypeDBPointer:
		dst = encoding.MarshalString(dst, v.s)
		dst = append(dst, v.oid[:]...)
	case TypeCodeWithScope:
		start := len(dst)
		dst = append(dst, 0, 0, 0, 0)
		dst = encoding.MarshalString(dst, v.s)
		dst, err = e.appendDocument(dst, value{t: TypeDocument, v: v.v})
		if err != nil {
			return dst, err
		}
		encoding.PutInt32LE(dst, start, int32(len(dst)-start))
	case TypeInt32:
		dst = encoding.MarshalInt32LE(dst, int32(v.i))
	case TypeDecimal128:
		dst = append(dst, v.dec[:]...)
	default:
		return dst, e.errorf(ErrUnsupportedType, "cannot serialize %s", v.t)
	}
	return dst, nil
}

func (e *encoder) appendDocument(dst []byte, v value) ([]byte, error) {
	if e.depth >= e.maxDepth {
		return dst, e.errorf(ErrDepthExceeded, "nesting depth exceeds %d", e.maxDepth)
	}
	e.depth++
	checkKeys := e.checkKeys
	if _, ok := v.v.(DBRef); ok {
		e.checkKeys = false
	}
	isArray := v.t == TypeArray

	start := len(dst)
	dst = append(dst, 0, 0, 0, 0)
	err := e.forEach(v, func(key string, item any) error {
		e.path = append(e.path, key)
		ev, skip, err := e.classify(item, isArray)
		if err != nil {
			return err
		}
		if !skip {
			if err := e.checkKey(key, isArray); err != nil {
				return err
			}
			dst = append(dst, byte(ev.t))
			dst = append(dst, key...)
			dst = append(dst, 0)
			if dst, err = e.appendValue(dst, ev); err != nil {
				return err
			}
			if len(dst)-start > e.maxSize {
				return e.errorf(ErrDocumentTooLarge, "document size exceeds %d bytes", e.maxSize)
			}
		}
		e.path = e.path[:len(e.path)-1]
		return nil
	})
	e.checkKeys = checkKeys
	e.depth--
	if err != nil {
		return dst, err
	}
	dst = append(dst, 0)
	size := len(dst) - start
	if size > e.maxSize {
		return dst, e.errorf(ErrDocumentTooLarge, "document size %d exceeds %d bytes", size, e.maxSize)
	}
	encoding.PutInt32LE(dst, start, int32(size))
	return dst, nil
}

func (e *encoder) checkKey(key string, isArray bool) error {
	if strings.IndexByte(key, 0) >= 0 {
		return e.errorf(ErrInvalidKey, "key must not contain null bytes")
	}
	if !utf8.ValidString(key) {
		return e.errorf(ErrInvalidUtf8, "key contains invalid utf-8 sequence")
	}
	if !e.checkKeys || isArray {
		return nil
	}
	if strings.HasPrefix(key, "$") {
		return e.errorf(ErrInvalidKey, "key must not start with '$'")
	}
	if strings.IndexByte(key, '.') >= 0 {
		return e.errorf(ErrInvalidKey, "key must not contain '.'")
	}
	return nil
}

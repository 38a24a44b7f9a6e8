package bson

import (
	"regexp"
	"strings"
	"time"

	"github.com/VictoriaMetrics/bson/lib/bytesutil"
	"github.com/VictoriaMetrics/bson/lib/decimal128"
	"github.com/VictoriaMetrics/bson/lib/encoding"
	"github.com/VictoriaMetrics/bson/lib/long"
	"github.com/VictoriaMetrics/bson/lib/objectid"
)

// Deserialize decodes BSON document at buf[opts.Index:].
//
// The buffer must contain exactly one document unless opts.AllowObjectSmallerThanBufferSize is set.
// The returned document doesn't reference buf.
func Deserialize(buf []byte, opts *DeserializeOptions) (Document, error) {
	d := newDecoder(opts)
	doc, _, err := d.deserialize(buf, d.opts.Index)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

type decoder struct {
	opts     DeserializeOptions
	maxDepth int
	depth    int
}

func newDecoder(opts *DeserializeOptions) *decoder {
	d := &decoder{}
	if opts != nil {
		d.opts = *opts
	}
	d.maxDepth = maxDepthOrDefault(d.opts.MaxDepth)
	return d
}

// deserialize decodes top-level document at buf[index:] and returns the offset after it.
func (d *decoder) deserialize(buf []byte, index int) (Document, int, error) {
	doc, end, err := d.deserializeInternal(buf, index)
	if err != nil {
		countError("decode", err)
		return nil, index, err
	}
	decodedDocuments.Inc()
	decodedBytes.Add(end - index)
	return doc, end, nil
}

func (d *decoder) deserializeInternal(buf []byte, index int) (Document, int, error) {
	if index < 0 || index > len(buf) {
		return nil, 0, encoding.NewDecodeError(ErrInvalidArgument, index, "index is out of buffer bounds [0..%d]", len(buf))
	}
	n, _, err := encoding.ReadInt32(buf, index)
	if err != nil {
		return nil, 0, err
	}
	size := int(n)
	if size < 5 {
		return nil, 0, encoding.NewDecodeError(ErrMalformedSize, index, "document size must be at least 5 bytes; got %d", size)
	}
	remaining := len(buf) - index
	if d.opts.AllowObjectSmallerThanBufferSize {
		if remaining < size {
			return nil, 0, encoding.NewDecodeError(ErrTruncatedBuffer, index, "buffer contains %d bytes, while document size is %d bytes", remaining, size)
		}
	} else if remaining != size {
		return nil, 0, encoding.NewDecodeError(ErrMalformedSize, index, "buffer contains %d bytes, while document size is %d bytes", remaining, size)
	}
	end := index + size
	if buf[end-1] != 0 {
		return nil, 0, encoding.NewDecodeError(ErrCorruptedDocument, end-1, "document must end with 0x00; got 0x%02x", buf[end-1])
	}
	doc, _, err := d.decodeDocument(buf[:end], index)
	if err != nil {
		return nil, 0, err
	}
	return doc, end, nil
}

// open validates the size of the document or array at buf[offset:].
//
// It returns buf bounded by the document end and the offset of the first element.
func (d *decoder) open(buf []byte, offset int) ([]byte, int, error) {
	if d.depth >= d.maxDepth {
		return nil, 0, encoding.NewDecodeError(ErrDepthExceeded, offset, "nesting depth exceeds %d", d.maxDepth)
	}
	n, next, err := encoding.ReadInt32(buf, offset)
	if err != nil {
		return nil, 0, err
	}
	size := int(n)
	if size < 5 {
		return nil, 0, encoding.NewDecodeError(ErrMalformedSize, offset, "document size must be at least 5 bytes; got %d", size)
	}
	if size > len(buf)-offset {
		return nil, 0, encoding.NewDecodeError(ErrTruncatedBuffer, offset, "document size %d exceeds the remaining %d bytes", size, len(buf)-offset)
	}
	return buf[:offset+size], next, nil
}

func (d *decoder) decodeDocument(buf []byte, offset int) (Document, int, error) {
	buf, i, err := d.open(buf, offset)
	if err != nil {
		return nil, 0, err
	}
	d.depth++
	doc := Document{}
	for {
		t, next, err := encoding.ReadByte(buf, i)
		if err != nil {
			return nil, 0, err
		}
		i = next
		if t == 0 {
			break
		}
		key, next, err := encoding.ReadCString(buf, i)
		if err != nil {
			return nil, 0, err
		}
		name := bytesutil.InternBytes(key)
		v, next, err := d.decodeValue(buf, Type(t), next, name)
		if err != nil {
			return nil, 0, err
		}
		doc = append(doc, Element{
			Key:   name,
			Value: v,
		})
		i = next
	}
	d.depth--
	if i != len(buf) {
		return nil, 0, encoding.NewDecodeError(ErrCorruptedDocument, offset, "document size %d doesn't match its contents size %d", len(buf)-offset, i-offset)
	}
	return doc, i, nil
}

func (d *decoder) decodeArray(buf []byte, offset int) (Array, int, error) {
	buf, i, err := d.open(buf, offset)
	if err != nil {
		return nil, 0, err
	}
	if buf[len(buf)-1] != 0 {
		return nil, 0, encoding.NewDecodeError(ErrCorruptedArray, len(buf)-1, "array must end with 0x00; got 0x%02x", buf[len(buf)-1])
	}
	d.depth++
	a := Array{}
	for {
		t, next, err := encoding.ReadByte(buf, i)
		if err != nil {
			return nil, 0, err
		}
		i = next
		if t == 0 {
			break
		}
		// Array keys are ignored. Items are stored in the wire order.
		_, next, err = encoding.ReadCString(buf, i)
		if err != nil {
			return nil, 0, err
		}
		v, next, err := d.decodeValue(buf, Type(t), next, "")
		if err != nil {
			return nil, 0, err
		}
		a = append(a, v)
		i = next
	}
	d.depth--
	if i != len(buf) {
		return nil, 0, encoding.NewDecodeError(ErrCorruptedArray, offset, "array size %d doesn't match its contents size %d", len(buf)-offset, i-offset)
	}
	return a, i, nil
}

func (d *decoder) rawBytes(buf []byte, offset int) ([]byte, int, error) {
	buf, _, err := d.open(buf, offset)
	if err != nil {
		return nil, 0, err
	}
	return append([]byte{}, buf[offset:]...), len(buf), nil
}

// decodeValue decodes the value of type t at buf[i:].
//
// key is the field name in the parent document. It is empty for array items.
func (d *decoder) decodeValue(buf []byte, t Type, i int, key string) (any, int, error) {
	switch t {
	case TypeDouble:
		f, next, err := encoding.ReadDouble(buf, i)
		if err != nil {
			return nil, 0, err
		}
		if d.opts.PromoteValues {
			return f, next, nil
		}
		return Double(f), next, nil
	case TypeString:
		s, next, err := encoding.ReadString(buf, i)
		if err != nil {
			return nil, 0, err
		}
		return string(s), next, nil
	case TypeDocument:
		if key != "" && d.opts.FieldsAsRaw[key] {
			b, next, err := d.rawBytes(buf, i)
			return RawDocument(b), next, err
		}
		return d.decodeDocument(buf, i)
	case TypeArray:
		if key != "" && d.opts.FieldsAsRaw[key] {
			b, next, err := d.rawBytes(buf, i)
			return RawArray(b), next, err
		}
		return d.decodeArray(buf, i)
	case TypeBinary:
		return d.decodeBinary(buf, i)
	case TypeUndefined:
		return Undefined{}, i, nil
	case TypeObjectID:
		b, next, err := encoding.ReadBytes(buf, i, objectid.Size)
		if err != nil {
			return nil, 0, err
		}
		var id objectid.ObjectID
		copy(id[:], b)
		return id, next, nil
	case TypeBoolean:
		b, next, err := encoding.ReadByte(buf, i)
		if err != nil {
			return nil, 0, err
		}
		if b > 1 {
			return nil, 0, encoding.NewDecodeError(ErrInvalidBoolean, i, "boolean must be 0x00 or 0x01; got 0x%02x", b)
		}
		return b == 1, next, nil
	case TypeDateTime:
		ms, next, err := encoding.ReadInt64(buf, i)
		if err != nil {
			return nil, 0, err
		}
		if d.opts.PromoteValues {
			return time.UnixMilli(ms).UTC(), next, nil
		}
		return DateTime(ms), next, nil
	case TypeNull:
		return nil, i, nil
	case TypeRegex:
		pattern, next, err := encoding.ReadCString(buf, i)
		if err != nil {
			return nil, 0, err
		}
		options, next, err := encoding.ReadCString(buf, next)
		if err != nil {
			return nil, 0, err
		}
		return d.regexpValue(string(pattern), string(options)), next, nil
	case TypeDBPointer:
		ns, next, err := encoding.ReadString(buf, i)
		if err != nil {
			return nil, 0, err
		}
		b, next, err := encoding.ReadBytes(buf, next, objectid.Size)
		if err != nil {
			return nil, 0, err
		}
		p := DBPointer{
			Namespace: string(ns),
		}
		copy(p.ID[:], b)
		return p, next, nil
	case TypeCode:
		s, next, err := encoding.ReadString(buf, i)
		if err != nil {
			return nil, 0, err
		}
		return Code{Code: string(s)}, next, nil
	case TypeSymbol:
		s, next, err := encoding.ReadString(buf, i)
		if err != nil {
			return nil, 0, err
		}
		if d.opts.PromoteValues {
			return string(s), next, nil
		}
		return Symbol(s), next, nil
	case TypeCodeWithScope:
		return d.decodeCodeWithScope(buf, i)
	case TypeInt32:
		n, next, err := encoding.ReadInt32(buf, i)
		if err != nil {
			return nil, 0, err
		}
		if d.opts.PromoteValues {
			return n, next, nil
		}
		return Int32(n), next, nil
	case TypeTimestamp:
		u, next, err := encoding.ReadUint64(buf, i)
		if err != nil {
			return nil, 0, err
		}
		return TimestampFromLong(long.FromUint64(u)), next, nil
	case TypeInt64:
		n, next, err := encoding.ReadInt64(buf, i)
		if err != nil {
			return nil, 0, err
		}
		if !d.opts.DisablePromoteLongs && n >= -maxSafeInteger && n <= maxSafeInteger {
			return n, next, nil
		}
		return long.FromInt64(n), next, nil
	case TypeDecimal128:
		b, next, err := encoding.ReadBytes(buf, i, decimal128.Size)
		if err != nil {
			return nil, 0, err
		}
		var dec decimal128.Decimal128
		copy(dec[:], b)
		return dec, next, nil
	case TypeMinKey:
		return MinKey{}, i, nil
	case TypeMaxKey:
		return MaxKey{}, i, nil
	}
	return nil, 0, encoding.NewDecodeError(ErrUnknownType, i, "unknown BSON type 0x%02x for field %q", byte(t), key)
}

func (d *decoder) decodeBinary(buf []byte, i int) (any, int, error) {
	n, next, err := encoding.ReadInt32(buf, i)
	if err != nil {
		return nil, 0, err
	}
	if n < 0 {
		return nil, 0, encoding.NewDecodeError(ErrMalformedSize, i, "binary size must be non-negative; got %d", n)
	}
	sub, next, err := encoding.ReadByte(buf, next)
	if err != nil {
		return nil, 0, err
	}
	if sub == BinarySubtypeByteArray {
		inner, innerNext, err := encoding.ReadInt32(buf, next)
		if err != nil {
			return nil, 0, err
		}
		if inner != n-4 {
			return nil, 0, encoding.NewDecodeError(ErrMalformedSize, next, "binary subtype 2 size %d doesn't match the outer size %d", inner, n)
		}
		n = inner
		next = innerNext
	}
	b, next, err := encoding.ReadBytes(buf, next, int(n))
	if err != nil {
		return nil, 0, err
	}
	data := append([]byte{}, b...)
	if d.opts.PromoteBuffers && sub == BinarySubtypeGeneric {
		return data, next, nil
	}
	return Binary{
		Subtype: sub,
		Data:    data,
	}, next, nil
}

func (d *decoder) decodeCodeWithScope(buf []byte, i int) (any, int, error) {
	n, next, err := encoding.ReadInt32(buf, i)
	if err != nil {
		return nil, 0, err
	}
	size := int(n)
	// size + string size + empty string + empty document
	if size < 4+4+1+5 {
		return nil, 0, encoding.NewDecodeError(ErrMalformedSize, i, "code with scope size must be at least 14 bytes; got %d", size)
	}
	if size > len(buf)-i {
		return nil, 0, encoding.NewDecodeError(ErrTruncatedBuffer, i, "code with scope size %d exceeds the remaining %d bytes", size, len(buf)-i)
	}
	end := i + size
	code, next, err := encoding.ReadString(buf[:end], next)
	if err != nil {
		return nil, 0, err
	}
	scope, next, err := d.decodeDocument(buf[:end], next)
	if err != nil {
		return nil, 0, err
	}
	if next != end {
		return nil, 0, encoding.NewDecodeError(ErrCorruptedDocument, i, "code with scope size %d doesn't match its contents size %d", size, next-i)
	}
	return Code{
		Code:  string(code),
		Scope: scope,
	}, next, nil
}

// regexpValue returns *regexp.Regexp for the given BSON pattern and options if possible.
//
// Regexp is returned if BSONRegExp option is set, if options contain flags unsupported by Go
// or if the pattern isn't a valid Go regular expression.
func (d *decoder) regexpValue(pattern, options string) any {
	re := Regexp{
		Pattern: pattern,
		Options: options,
	}
	if d.opts.BSONRegExp || strings.Trim(options, "ims") != "" {
		return re
	}
	expr := pattern
	if options != "" {
		expr = "(?" + options + ")" + pattern
	}
	r, err := regexp.Compile(expr)
	if err != nil {
		return re
	}
	return r
}

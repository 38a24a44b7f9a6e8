package bsonjson

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"github.com/VictoriaMetrics/bson/lib/bson"
	"github.com/VictoriaMetrics/bson/lib/bytesutil"
	"github.com/VictoriaMetrics/bson/lib/encoding"
	"github.com/VictoriaMetrics/bson/lib/objectid"
)

var (
	transcodedDocuments = metrics.NewCounter(`bson_transcoded_documents_total`)
	transcodedBytes     = metrics.NewCounter(`bson_transcoded_bytes_total`)
)

// Transcode appends JSON representation of BSON document src to dst and returns the result.
//
// src must contain exactly one document. Values without JSON representation such as binary, regular expressions,
// timestamps and decimals are omitted together with their keys. Datetime values are written as strings
// in Go time format, while non-finite doubles are written as null.
//
// dst is restored to its original length on error.
func Transcode(dst, src []byte) ([]byte, error) {
	dstLen := len(dst)
	dst, err := transcode(dst, src)
	if err != nil {
		countError(err)
		return dst[:dstLen], err
	}
	transcodedDocuments.Inc()
	transcodedBytes.Add(len(src))
	return dst, nil
}

// TranscodeString returns JSON representation of BSON document src.
func TranscodeString(src []byte) (string, error) {
	dst, err := Transcode(nil, src)
	if err != nil {
		return "", err
	}
	return string(dst), nil
}

func transcode(dst, src []byte) ([]byte, error) {
	n, _, err := encoding.ReadInt32(src, 0)
	if err != nil {
		return dst, err
	}
	size := int(n)
	if size < 5 {
		return dst, encoding.NewDecodeError(bson.ErrMalformedSize, 0, "document size must be at least 5 bytes; got %d", size)
	}
	if size != len(src) {
		return dst, encoding.NewDecodeError(bson.ErrMalformedSize, 0, "buffer contains %d bytes, while document size is %d bytes", len(src), size)
	}
	if src[size-1] != 0 {
		return dst, encoding.NewDecodeError(bson.ErrCorruptedDocument, size-1, "document must end with 0x00; got 0x%02x", src[size-1])
	}

	// JSON is usually bigger than BSON because of quoted keys and textual numbers.
	dst = bytesutil.GrowCapacity(dst, 2*len(src))
	t := transcoder{
		maxDepth: bson.DefaultMaxDepth,
	}
	dst, _, err = t.appendDocument(dst, src, 0, false)
	return dst, err
}

type transcoder struct {
	maxDepth int
	depth    int

	// scratch receives the JSON of skipped code with scope documents.
	scratch []byte
}

func (t *transcoder) appendDocument(dst, src []byte, offset int, isArray bool) ([]byte, int, error) {
	if t.depth >= t.maxDepth {
		return dst, 0, encoding.NewDecodeError(bson.ErrDepthExceeded, offset, "nesting depth exceeds %d", t.maxDepth)
	}
	n, i, err := encoding.ReadInt32(src, offset)
	if err != nil {
		return dst, 0, err
	}
	size := int(n)
	if size < 5 {
		return dst, 0, encoding.NewDecodeError(bson.ErrMalformedSize, offset, "document size must be at least 5 bytes; got %d", size)
	}
	if size > len(src)-offset {
		return dst, 0, encoding.NewDecodeError(bson.ErrTruncatedBuffer, offset, "document size %d exceeds the remaining %d bytes", size, len(src)-offset)
	}
	src = src[:offset+size]
	corrupted := bson.ErrCorruptedDocument
	if isArray {
		corrupted = bson.ErrCorruptedArray
		if src[len(src)-1] != 0 {
			return dst, 0, encoding.NewDecodeError(corrupted, len(src)-1, "array must end with 0x00; got 0x%02x", src[len(src)-1])
		}
	}

	t.depth++
	if isArray {
		dst = append(dst, '[')
	} else {
		dst = append(dst, '{')
	}
	first := true
	for {
		tag, next, err := encoding.ReadByte(src, i)
		if err != nil {
			return dst, 0, err
		}
		i = next
		if tag == 0 {
			break
		}
		key, next, err := encoding.ReadCString(src, i)
		if err != nil {
			return dst, 0, err
		}
		i = next
		typ := bson.Type(tag)
		if !isJSONType(typ) {
			if i, err = t.skipValue(src, typ, i); err != nil {
				return dst, 0, err
			}
			continue
		}
		if !first {
			dst = append(dst, ',')
		}
		first = false
		if !isArray {
			dst = appendString(dst, key)
			dst = append(dst, ':')
		}
		if dst, i, err = t.appendValue(dst, src, typ, i); err != nil {
			return dst, 0, err
		}
	}
	t.depth--
	if isArray {
		dst = append(dst, ']')
	} else {
		dst = append(dst, '}')
	}
	if i != len(src) {
		return dst, 0, encoding.NewDecodeError(corrupted, offset, "size %d doesn't match the contents size %d", size, i-offset)
	}
	return dst, i, nil
}

func isJSONType(typ bson.Type) bool {
	switch typ {
	case bson.TypeDouble, bson.TypeString, bson.TypeDocument, bson.TypeArray, bson.TypeObjectID, bson.TypeBoolean,
		bson.TypeDateTime, bson.TypeNull, bson.TypeInt32, bson.TypeInt64:
		return true
	}
	return false
}

// dateLayout is the layout used by time.Time.String.
const dateLayout = "2006-01-02 15:04:05.999999999 -0700 MST"

func (t *transcoder) appendValue(dst, src []byte, typ bson.Type, i int) ([]byte, int, error) {
	switch typ {
	case bson.TypeDouble:
		f, next, err := encoding.ReadDouble(src, i)
		if err != nil {
			return dst, 0, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return append(dst, "null"...), next, nil
		}
		return encoding.AppendFloat64(dst, f), next, nil
	case bson.TypeString:
		s, next, err := encoding.ReadString(src, i)
		if err != nil {
			return dst, 0, err
		}
		return appendString(dst, s), next, nil
	case bson.TypeDocument:
		return t.appendDocument(dst, src, i, false)
	case bson.TypeArray:
		return t.appendDocument(dst, src, i, true)
	case bson.TypeObjectID:
		b, next, err := encoding.ReadBytes(src, i, objectid.Size)
		if err != nil {
			return dst, 0, err
		}
		var id objectid.ObjectID
		copy(id[:], b)
		dst = append(dst, '"')
		dst = id.AppendHex(dst)
		return append(dst, '"'), next, nil
	case bson.TypeBoolean:
		b, next, err := encoding.ReadByte(src, i)
		if err != nil {
			return dst, 0, err
		}
		switch b {
		case 0:
			return append(dst, "false"...), next, nil
		case 1:
			return append(dst, "true"...), next, nil
		}
		return dst, 0, encoding.NewDecodeError(bson.ErrInvalidBoolean, i, "boolean must be 0x00 or 0x01; got 0x%02x", b)
	case bson.TypeDateTime:
		ms, next, err := encoding.ReadInt64(src, i)
		if err != nil {
			return dst, 0, err
		}
		dst = append(dst, '"')
		dst = time.UnixMilli(ms).UTC().AppendFormat(dst, dateLayout)
		return append(dst, '"'), next, nil
	case bson.TypeNull:
		return append(dst, "null"...), i, nil
	case bson.TypeInt32:
		n, next, err := encoding.ReadInt32(src, i)
		if err != nil {
			return dst, 0, err
		}
		return strconv.AppendInt(dst, int64(n), 10), next, nil
	case bson.TypeInt64:
		n, next, err := encoding.ReadInt64(src, i)
		if err != nil {
			return dst, 0, err
		}
		return strconv.AppendInt(dst, n, 10), next, nil
	}
	return dst, 0, encoding.NewDecodeError(bson.ErrUnknownType, i, "unexpected BSON type %s", typ)
}

// skipValue validates the value of type typ at src[i:] without transcoding it and returns the offset after it.
func (t *transcoder) skipValue(src []byte, typ bson.Type, i int) (int, error) {
	switch typ {
	case bson.TypeBinary:
		n, next, err := encoding.ReadInt32(src, i)
		if err != nil {
			return 0, err
		}
		if n < 0 {
			return 0, encoding.NewDecodeError(bson.ErrMalformedSize, i, "binary size must be non-negative; got %d", n)
		}
		sub, next, err := encoding.ReadByte(src, next)
		if err != nil {
			return 0, err
		}
		if sub == bson.BinarySubtypeByteArray {
			inner, innerNext, err := encoding.ReadInt32(src, next)
			if err != nil {
				return 0, err
			}
			if inner != n-4 {
				return 0, encoding.NewDecodeError(bson.ErrMalformedSize, next, "binary subtype 2 size %d doesn't match the outer size %d", inner, n)
			}
			n = inner
			next = innerNext
		}
		_, next, err = encoding.ReadBytes(src, next, int(n))
		return next, err
	case bson.TypeRegex:
		_, next, err := encoding.ReadCString(src, i)
		if err != nil {
			return 0, err
		}
		_, next, err = encoding.ReadCString(src, next)
		return next, err
	case bson.TypeSymbol, bson.TypeCode:
		_, next, err := encoding.ReadString(src, i)
		return next, err
	case bson.TypeDBPointer:
		_, next, err := encoding.ReadString(src, i)
		if err != nil {
			return 0, err
		}
		_, next, err = encoding.ReadBytes(src, next, objectid.Size)
		return next, err
	case bson.TypeCodeWithScope:
		n, next, err := encoding.ReadInt32(src, i)
		if err != nil {
			return 0, err
		}
		size := int(n)
		if size < 4+4+1+5 {
			return 0, encoding.NewDecodeError(bson.ErrMalformedSize, i, "code with scope size must be at least 14 bytes; got %d", size)
		}
		if size > len(src)-i {
			return 0, encoding.NewDecodeError(bson.ErrTruncatedBuffer, i, "code with scope size %d exceeds the remaining %d bytes", size, len(src)-i)
		}
		end := i + size
		if _, next, err = encoding.ReadString(src[:end], next); err != nil {
			return 0, err
		}
		// The scope is dropped from the output, but it must still be a valid document.
		if t.scratch, next, err = t.appendDocument(t.scratch[:0], src[:end], next, false); err != nil {
			return 0, err
		}
		if next != end {
			return 0, encoding.NewDecodeError(bson.ErrCorruptedDocument, i, "code with scope size %d doesn't match its contents size %d", size, next-i)
		}
		return next, nil
	case bson.TypeTimestamp:
		_, next, err := encoding.ReadBytes(src, i, 8)
		return next, err
	case bson.TypeDecimal128:
		_, next, err := encoding.ReadBytes(src, i, 16)
		return next, err
	case bson.TypeUndefined, bson.TypeMinKey, bson.TypeMaxKey:
		return i, nil
	}
	return 0, encoding.NewDecodeError(bson.ErrUnknownType, i, "unknown BSON type 0x%02x", byte(typ))
}

// escapes contains the second byte of two-byte JSON escape sequences.
//
// Other bytes are copied as is.
var escapes = [256]byte{
	'\b': 'b',
	'\t': 't',
	'\n': 'n',
	'\f': 'f',
	'\r': 'r',
	'"':  '"',
	'/':  '/',
	'\\': '\\',
}

func appendString(dst, s []byte) []byte {
	dst = append(dst, '"')
	start := 0
	for i, c := range s {
		esc := escapes[c]
		if esc == 0 {
			continue
		}
		dst = append(dst, s[start:i]...)
		dst = append(dst, '\\', esc)
		start = i + 1
	}
	dst = append(dst, s[start:]...)
	return append(dst, '"')
}

func countError(err error) {
	kind := encoding.KindName(err)
	if kind == "" {
		kind = "other"
	}
	metrics.GetOrCreateCounter(fmt.Sprintf(`bson_errors_total{op="transcode",kind=%q}`, kind)).Inc()
}

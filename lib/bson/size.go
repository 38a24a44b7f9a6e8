package bson

import (
	"github.com/VictoriaMetrics/bson/lib/decimal128"
	"github.com/VictoriaMetrics/bson/lib/encoding"
	"github.com/VictoriaMetrics/bson/lib/objectid"
)

// CalculateObjectSize returns the size of BSON representation of the document v without encoding it.
//
// The returned size equals to len(Serialize(v)) for the matching options.
func CalculateObjectSize(v any, opts *CalculateObjectSizeOptions) (int, error) {
	e := newSizeEncoder(opts)
	tv, err := e.classifyTopLevel(v)
	if err != nil {
		return 0, err
	}
	return e.valueSize(tv)
}

func (e *encoder) valueSize(v value) (int, error) {
	switch v.t {
	case TypeDouble, TypeDateTime, TypeInt64, TypeTimestamp:
		return 8, nil
	case TypeString, TypeSymbol, TypeCode:
		return encoding.StringSize(v.s), nil
	case TypeDocument, TypeArray:
		if v.raw {
			return len(v.b), nil
		}
		return e.documentSize(v)
	case TypeBinary:
		n := 4 + 1 + len(v.b)
		if v.sub == BinarySubtypeByteArray {
			n += 4
		}
		return n, nil
	case TypeObjectID:
		return objectid.Size, nil
	case TypeBoolean:
		return 1, nil
	case TypeNull, TypeMinKey, TypeMaxKey:
		return 0, nil
	case TypeRegex:
		return encoding.CStringSize(v.s) + encoding.CStringSize(v.options), nil
	case TypeDBPointer:
		return encoding.StringSize(v.s) + objectid.Size, nil
	case TypeCodeWithScope:
		n, err := e.documentSize(value{t: TypeDocument, v: v.v})
		if err != nil {
			return 0, err
		}
		return 4 + encoding.StringSize(v.s) + n, nil
	case TypeInt32:
		return 4, nil
	case TypeDecimal128:
		return decimal128.Size, nil
	}
	return 0, e.errorf(ErrUnsupportedType, "cannot serialize %s", v.t)
}

func (e *encoder) documentSize(v value) (int, error) {
	if e.depth >= e.maxDepth {
		return 0, e.errorf(ErrDepthExceeded, "nesting depth exceeds %d", e.maxDepth)
	}
	e.depth++
	isArray := v.t == TypeArray

	size := 4 + 1
	err := e.forEach(v, func(key string, item any) error {
		e.path = append(e.path, key)
		ev, skip, err := e.classify(item, isArray)
		if err != nil {
			return err
		}
		if !skip {
			n, err := e.valueSize(ev)
			if err != nil {
				return err
			}
			size += 1 + encoding.CStringSize(key) + n
		}
		e.path = e.path[:len(e.path)-1]
		return nil
	})
	e.depth--
	if err != nil {
		return 0, err
	}
	return size, nil
}

// TypeOf returns the BSON type v is encoded as with default options.
//
// Undefined is reported as TypeUndefined. false is returned if v cannot be encoded
// or is omitted from documents with default options, such as Function.
func TypeOf(v any) (Type, bool) {
	if _, ok := v.(Undefined); ok {
		return TypeUndefined, true
	}
	vv, skip, err := newSizeEncoder(nil).classify(v, false)
	if skip || err != nil {
		return 0, false
	}
	return vv.t, true
}

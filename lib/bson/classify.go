package bson

import (
	"math"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/VictoriaMetrics/bson/lib/bytesutil"
	"github.com/VictoriaMetrics/bson/lib/decimal128"
	"github.com/VictoriaMetrics/bson/lib/encoding"
	"github.com/VictoriaMetrics/bson/lib/long"
	"github.com/VictoriaMetrics/bson/lib/objectid"
)

const maxSafeInteger = 1<<53 - 1

// encoder holds the state shared by document encoding and size calculation.
//
// Both paths classify host values with classify, so they always agree on the element type and the payload.
type encoder struct {
	checkKeys          bool
	serializeFunctions bool
	undefinedAsNull    bool
	numberPolicy       NumberPolicy
	maxDepth           int
	maxSize            int

	depth int
	path  []string
}

func newEncoder(opts *SerializeOptions) *encoder {
	if opts == nil {
		opts = &SerializeOptions{}
	}
	return &encoder{
		checkKeys:          opts.CheckKeys,
		serializeFunctions: opts.SerializeFunctions,
		undefinedAsNull:    opts.SerializeUndefinedAsNull,
		numberPolicy:       opts.NumberPolicy,
		maxDepth:           maxDepthOrDefault(opts.MaxDepth),
		maxSize:            min(opts.maxDocumentSize(), math.MaxInt32),
	}
}

func newSizeEncoder(opts *CalculateObjectSizeOptions) *encoder {
	if opts == nil {
		opts = &CalculateObjectSizeOptions{}
	}
	return &encoder{
		serializeFunctions: opts.SerializeFunctions,
		undefinedAsNull:    opts.SerializeUndefinedAsNull,
		numberPolicy:       opts.NumberPolicy,
		maxDepth:           maxDepthOrDefault(opts.MaxDepth),
		maxSize:            math.MaxInt32,
	}
}

func (e *encoder) errorf(kind error, format string, args ...any) error {
	return encoding.NewEncodeError(kind, strings.Join(e.path, "."), format, args...)
}

// value is a host value classified for encoding.
type value struct {
	t Type

	// i holds integer payloads: int32, int64, datetime, timestamp and boolean.
	i int64
	f float64

	// s holds string payloads: string, symbol, code, regex pattern and dbpointer namespace.
	s string

	// options holds regex options.
	options string

	// b holds binary data or the encoded raw document if raw is set.
	b   []byte
	sub byte
	raw bool

	oid objectid.ObjectID
	dec decimal128.Decimal128

	// v holds Document, map[string]any, DBRef or Array for documents and arrays,
	// and the scope Document for code with scope.
	v any

	// rv holds reflected maps, structs, slices and arrays.
	rv reflect.Value
}

var nullValue = value{
	t: TypeNull,
}

// classify returns the classified v. skip is set if v must be omitted from the output.
//
// inArray must be set for array items, since Undefined items are encoded as null there.
func (e *encoder) classify(v any, inArray bool) (value, bool, error) {
	vv, skip, err := e.classifyValue(v, inArray)
	if err != nil || skip {
		return vv, skip, err
	}
	switch vv.t {
	case TypeString, TypeSymbol, TypeCode, TypeCodeWithScope, TypeDBPointer:
		if !utf8.ValidString(vv.s) {
			return value{}, false, e.errorf(ErrInvalidUtf8, "%s contains invalid utf-8 sequence", vv.t)
		}
	case TypeRegex:
		if !utf8.ValidString(vv.s) || !utf8.ValidString(vv.options) {
			return value{}, false, e.errorf(ErrInvalidUtf8, "regex contains invalid utf-8 sequence")
		}
	}
	return vv, false, nil
}

func (e *encoder) classifyValue(v any, inArray bool) (value, bool, error) {
	switch x := v.(type) {
	case nil:
		return nullValue, false, nil
	case Undefined:
		if inArray || e.undefinedAsNull {
			return nullValue, false, nil
		}
		return value{}, true, nil
	case bool:
		vv := value{
			t: TypeBoolean,
		}
		if x {
			vv.i = 1
		}
		return vv, false, nil
	case string:
		return value{t: TypeString, s: x}, false, nil
	case Symbol:
		return value{t: TypeSymbol, s: string(x)}, false, nil
	case int:
		return intValue(int64(x)), false, nil
	case int8:
		return value{t: TypeInt32, i: int64(x)}, false, nil
	case int16:
		return value{t: TypeInt32, i: int64(x)}, false, nil
	case int32:
		return value{t: TypeInt32, i: int64(x)}, false, nil
	case Int32:
		return value{t: TypeInt32, i: int64(x)}, false, nil
	case int64:
		return value{t: TypeInt64, i: x}, false, nil
	case uint8:
		return value{t: TypeInt32, i: int64(x)}, false, nil
	case uint16:
		return value{t: TypeInt32, i: int64(x)}, false, nil
	case uint32:
		return intValue(int64(x)), false, nil
	case uint:
		return e.uintValue(uint64(x))
	case uint64:
		return e.uintValue(x)
	case float32:
		return e.floatValue(float64(x)), false, nil
	case float64:
		return e.floatValue(x), false, nil
	case Double:
		return value{t: TypeDouble, f: float64(x)}, false, nil
	case long.Long:
		return value{t: TypeInt64, i: x.Int64()}, false, nil
	case Timestamp:
		return value{t: TypeTimestamp, i: x.Long().Int64()}, false, nil
	case decimal128.Decimal128:
		return value{t: TypeDecimal128, dec: x}, false, nil
	case objectid.ObjectID:
		return value{t: TypeObjectID, oid: x}, false, nil
	case []byte:
		return value{t: TypeBinary, b: x}, false, nil
	case Binary:
		return value{t: TypeBinary, sub: x.Subtype, b: x.Data}, false, nil
	case DateTime:
		return value{t: TypeDateTime, i: int64(x)}, false, nil
	case time.Time:
		return value{t: TypeDateTime, i: x.UnixMilli()}, false, nil
	case Regexp:
		return value{t: TypeRegex, s: x.Pattern, options: sortRegexpOptions(x.Options)}, false, nil
	case *regexp.Regexp:
		if x == nil {
			return nullValue, false, nil
		}
		pattern, options := splitRegexp(x)
		return value{t: TypeRegex, s: pattern, options: options}, false, nil
	case Code:
		return codeValue(x.Code, x.Scope), false, nil
	case Function:
		if !e.serializeFunctions {
			return value{}, true, nil
		}
		return codeValue(x.Source, x.Scope), false, nil
	case DBPointer:
		return value{t: TypeDBPointer, s: x.Namespace, oid: x.ID}, false, nil
	case MinKey:
		return value{t: TypeMinKey}, false, nil
	case MaxKey:
		return value{t: TypeMaxKey}, false, nil
	case Document:
		return value{t: TypeDocument, v: x}, false, nil
	case DBRef:
		return value{t: TypeDocument, v: x}, false, nil
	case map[string]any:
		if x == nil {
			return nullValue, false, nil
		}
		return value{t: TypeDocument, v: x}, false, nil
	case RawDocument:
		if err := e.checkRaw(x); err != nil {
			return value{}, false, err
		}
		return value{t: TypeDocument, b: x, raw: true}, false, nil
	case RawArray:
		if err := e.checkRaw(x); err != nil {
			return value{}, false, err
		}
		return value{t: TypeArray, b: x, raw: true}, false, nil
	case Array:
		return value{t: TypeArray, v: x}, false, nil
	case []any:
		if x == nil {
			return nullValue, false, nil
		}
		return value{t: TypeArray, v: Array(x)}, false, nil
	}
	return e.classifyReflect(reflect.ValueOf(v), inArray)
}

func (e *encoder) classifyReflect(rv reflect.Value, inArray bool) (value, bool, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nullValue, false, nil
		}
		return e.classify(rv.Elem().Interface(), inArray)
	case reflect.Bool:
		return e.classify(rv.Bool(), inArray)
	case reflect.String:
		return value{t: TypeString, s: rv.String()}, false, nil
	case reflect.Int64:
		return value{t: TypeInt64, i: rv.Int()}, false, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return intValue(rv.Int()), false, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return e.uintValue(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return e.floatValue(rv.Float()), false, nil
	case reflect.Slice:
		if rv.IsNil() {
			return nullValue, false, nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return value{t: TypeBinary, b: rv.Bytes()}, false, nil
		}
		return value{t: TypeArray, rv: rv}, false, nil
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return value{t: TypeBinary, b: b}, false, nil
		}
		return value{t: TypeArray, rv: rv}, false, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return value{}, false, e.errorf(ErrUnsupportedType, "map keys must be strings; got %s", rv.Type())
		}
		if rv.IsNil() {
			return nullValue, false, nil
		}
		return value{t: TypeDocument, rv: rv}, false, nil
	case reflect.Struct:
		return value{t: TypeDocument, rv: rv}, false, nil
	case reflect.Func:
		if !e.serializeFunctions {
			return value{}, true, nil
		}
		return value{}, false, e.errorf(ErrUnsupportedType, "cannot serialize %s without its source code; use bson.Function instead", rv.Type())
	}
	if !rv.IsValid() {
		return nullValue, false, nil
	}
	return value{}, false, e.errorf(ErrUnsupportedType, "cannot serialize value of type %s", rv.Type())
}

func intValue(n int64) value {
	if n >= math.MinInt32 && n <= math.MaxInt32 {
		return value{t: TypeInt32, i: n}
	}
	return value{t: TypeInt64, i: n}
}

func (e *encoder) uintValue(n uint64) (value, bool, error) {
	if n > math.MaxInt64 {
		return value{}, false, e.errorf(ErrUnsupportedType, "%d overflows int64", n)
	}
	return intValue(int64(n)), false, nil
}

func (e *encoder) floatValue(f float64) value {
	if e.numberPolicy == NumberSmallestInteger && f == math.Trunc(f) && !math.IsInf(f, 0) {
		if f >= math.MinInt32 && f <= math.MaxInt32 {
			return value{t: TypeInt32, i: int64(f)}
		}
		if math.Abs(f) <= maxSafeInteger {
			return value{t: TypeInt64, i: int64(f)}
		}
	}
	return value{t: TypeDouble, f: f}
}

func codeValue(code string, scope Document) value {
	if scope == nil {
		return value{t: TypeCode, s: code}
	}
	return value{t: TypeCodeWithScope, s: code, v: scope}
}

func (e *encoder) checkRaw(b []byte) error {
	if len(b) < 5 || int(encoding.UnmarshalInt32LE(b)) != len(b) || b[len(b)-1] != 0 {
		return e.errorf(ErrInvalidArgument, "raw BSON must start with its own size and end with 0x00; got %d bytes", len(b))
	}
	return nil
}

var regexpFlagsPrefix = regexp.MustCompile(`^\(\?([ims]+)\)`)

// splitRegexp splits re into BSON pattern and options.
//
// Leading flags group such as (?im) is converted into options.
func splitRegexp(re *regexp.Regexp) (string, string) {
	s := re.String()
	m := regexpFlagsPrefix.FindStringSubmatch(s)
	if m == nil {
		return s, ""
	}
	return s[len(m[0]):], sortRegexpOptions(m[1])
}

func sortRegexpOptions(s string) string {
	b := []byte(s)
	if slices.IsSorted(b) {
		return s
	}
	slices.Sort(b)
	return string(b)
}

// forEach calls f for every field of the classified document or array v.
//
// Array items get their decimal index as the key.
func (e *encoder) forEach(v value, f func(key string, item any) error) error {
	if v.rv.IsValid() {
		return forEachReflect(v.rv, f)
	}
	switch x := v.v.(type) {
	case Document:
		for _, el := range x {
			if err := f(el.Key, el.Value); err != nil {
				return err
			}
		}
	case Array:
		for i, item := range x {
			if err := f(bytesutil.Itoa(i), item); err != nil {
				return err
			}
		}
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if err := f(k, x[k]); err != nil {
				return err
			}
		}
	case DBRef:
		if err := f("$ref", x.Collection); err != nil {
			return err
		}
		if err := f("$id", x.ID); err != nil {
			return err
		}
		if x.DB != "" {
			if err := f("$db", x.DB); err != nil {
				return err
			}
		}
		for _, el := range x.Fields {
			if err := f(el.Key, el.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func forEachReflect(rv reflect.Value, f func(key string, item any) error) error {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := f(bytesutil.Itoa(i), rv.Index(i).Interface()); err != nil {
				return err
			}
		}
	case reflect.Map:
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(a.String(), b.String())
		})
		for _, k := range keys {
			if err := f(k.String(), rv.MapIndex(k).Interface()); err != nil {
				return err
			}
		}
	case reflect.Struct:
		for _, sf := range getStructFields(rv.Type()) {
			fv := rv.Field(sf.index)
			if sf.omitEmpty && fv.IsZero() {
				continue
			}
			if err := f(sf.name, fv.Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}

type structField struct {
	index     int
	name      string
	omitEmpty bool
}

var structFieldsCache sync.Map

// getStructFields returns encodable fields of the struct type t.
//
// Fields are named by the `bson:"name,omitempty"` tag or by the Go field name. Fields tagged with `bson:"-"` are skipped.
func getStructFields(t reflect.Type) []structField {
	if v, ok := structFieldsCache.Load(t); ok {
		return v.([]structField)
	}
	var fields []structField
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("bson")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = sf.Name
		}
		fields = append(fields, structField{
			index:     i,
			name:      name,
			omitEmpty: slices.Contains(strings.Split(opts, ","), "omitempty"),
		})
	}
	structFieldsCache.Store(t, fields)
	return fields
}

package bson

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/valyala/fastjson"
	"github.com/valyala/quicktemplate"

	"github.com/VictoriaMetrics/bson/lib/decimal128"
	"github.com/VictoriaMetrics/bson/lib/encoding"
	"github.com/VictoriaMetrics/bson/lib/long"
	"github.com/VictoriaMetrics/bson/lib/objectid"
)

// ExtendedJSONValue is implemented by all the extended BSON types.
//
// ToExtendedJSON must append canonical or relaxed MongoDB Extended JSON v2 representation to dst.
type ExtendedJSONValue interface {
	ToExtendedJSON(dst []byte, relaxed bool) []byte
}

var (
	_ ExtendedJSONValue = Double(0)
	_ ExtendedJSONValue = Int32(0)
	_ ExtendedJSONValue = DateTime(0)
	_ ExtendedJSONValue = Symbol("")
	_ ExtendedJSONValue = Binary{}
	_ ExtendedJSONValue = Undefined{}
	_ ExtendedJSONValue = Regexp{}
	_ ExtendedJSONValue = DBPointer{}
	_ ExtendedJSONValue = Code{}
	_ ExtendedJSONValue = MinKey{}
	_ ExtendedJSONValue = MaxKey{}
	_ ExtendedJSONValue = Timestamp{}
	_ ExtendedJSONValue = DBRef{}
	_ ExtendedJSONValue = long.Long{}
	_ ExtendedJSONValue = decimal128.Decimal128{}
	_ ExtendedJSONValue = objectid.ObjectID{}
)

// ToExtendedJSON implements ExtendedJSONValue.
//
// Relaxed form of finite values is a plain JSON number.
func (d Double) ToExtendedJSON(dst []byte, relaxed bool) []byte {
	f := float64(d)
	finite := !math.IsNaN(f) && !math.IsInf(f, 0)
	if relaxed && finite {
		return encoding.AppendFloat64(dst, f)
	}
	dst = append(dst, `{"$numberDouble":"`...)
	switch {
	case f == 0 && math.Signbit(f):
		dst = append(dst, "-0.0"...)
	case finite && f == math.Trunc(f) && math.Abs(f) < 1e21:
		dst = strconv.AppendFloat(dst, f, 'f', 1, 64)
	default:
		dst = encoding.AppendFloat64(dst, f)
	}
	return append(dst, `"}`...)
}

// DoubleFromExtendedJSON returns Double from {"$numberDouble":"..."} or from a plain number.
func DoubleFromExtendedJSON(v *fastjson.Value) (Double, error) {
	if v.Type() == fastjson.TypeNumber {
		f, err := v.Float64()
		return Double(f), err
	}
	s, err := getString(v, "$numberDouble")
	if err != nil {
		return 0, err
	}
	switch s {
	case "Infinity":
		return Double(math.Inf(1)), nil
	case "-Infinity":
		return Double(math.Inf(-1)), nil
	case "NaN":
		return Double(math.NaN()), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse $numberDouble: %w", err)
	}
	return Double(f), nil
}

// ToExtendedJSON implements ExtendedJSONValue.
func (n Int32) ToExtendedJSON(dst []byte, relaxed bool) []byte {
	if relaxed {
		return strconv.AppendInt(dst, int64(n), 10)
	}
	dst = append(dst, `{"$numberInt":"`...)
	dst = strconv.AppendInt(dst, int64(n), 10)
	return append(dst, `"}`...)
}

// Int32FromExtendedJSON returns Int32 from {"$numberInt":"..."} or from a plain number.
func Int32FromExtendedJSON(v *fastjson.Value) (Int32, error) {
	if v.Type() == fastjson.TypeNumber {
		n, err := v.Int64()
		if err != nil {
			return 0, err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return 0, fmt.Errorf("%d overflows int32", n)
		}
		return Int32(n), nil
	}
	s, err := getString(v, "$numberInt")
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("cannot parse $numberInt: %w", err)
	}
	return Int32(n), nil
}

const isoDateFormat = "2006-01-02T15:04:05.000Z07:00"

// ToExtendedJSON implements ExtendedJSONValue.
//
// Relaxed form uses ISO-8601 string for years 1970-9999.
func (dt DateTime) ToExtendedJSON(dst []byte, relaxed bool) []byte {
	dst = append(dst, `{"$date":`...)
	t := dt.Time()
	if relaxed && t.Year() >= 1970 && t.Year() <= 9999 {
		dst = append(dst, '"')
		dst = t.AppendFormat(dst, isoDateFormat)
		dst = append(dst, '"')
	} else {
		dst = long.FromInt64(int64(dt)).ToExtendedJSON(dst, false)
	}
	return append(dst, '}')
}

// DateTimeFromExtendedJSON returns DateTime from {"$date":...}.
//
// The $date may contain ISO-8601 string, {"$numberLong":"..."} or a number of milliseconds.
func DateTimeFromExtendedJSON(v *fastjson.Value) (DateTime, error) {
	dv, err := getMember(v, "$date")
	if err != nil {
		return 0, err
	}
	if dv.Type() == fastjson.TypeString {
		t, err := time.Parse(time.RFC3339Nano, string(dv.GetStringBytes()))
		if err != nil {
			return 0, fmt.Errorf("cannot parse $date: %w", err)
		}
		return NewDateTime(t), nil
	}
	l, err := long.FromExtendedJSON(dv)
	if err != nil {
		return 0, fmt.Errorf("cannot parse $date: %w", err)
	}
	return DateTime(l.Int64()), nil
}

// ToExtendedJSON implements ExtendedJSONValue.
func (s Symbol) ToExtendedJSON(dst []byte, _ bool) []byte {
	dst = append(dst, `{"$symbol":`...)
	dst = quicktemplate.AppendJSONString(dst, string(s), true)
	return append(dst, '}')
}

// SymbolFromExtendedJSON returns Symbol from {"$symbol":"..."}.
func SymbolFromExtendedJSON(v *fastjson.Value) (Symbol, error) {
	s, err := getString(v, "$symbol")
	return Symbol(s), err
}

// ToExtendedJSON implements ExtendedJSONValue.
func (b Binary) ToExtendedJSON(dst []byte, _ bool) []byte {
	dst = append(dst, `{"$binary":{"base64":"`...)
	dst = base64.StdEncoding.AppendEncode(dst, b.Data)
	dst = append(dst, `","subType":"`...)
	dst = hex.AppendEncode(dst, []byte{b.Subtype})
	return append(dst, `"}}`...)
}

// BinaryFromExtendedJSON returns Binary from {"$binary":{"base64":"...","subType":"xx"}}.
//
// Legacy {"$binary":"...","$type":"xx"} form is accepted too.
func BinaryFromExtendedJSON(v *fastjson.Value) (Binary, error) {
	bv, err := getMember(v, "$binary")
	if err != nil {
		return Binary{}, err
	}
	var data, subtype string
	if bv.Type() == fastjson.TypeString {
		data = string(bv.GetStringBytes())
		if subtype, err = getString(v, "$type"); err != nil {
			return Binary{}, err
		}
	} else {
		if data, err = getString(bv, "base64"); err != nil {
			return Binary{}, err
		}
		if subtype, err = getString(bv, "subType"); err != nil {
			return Binary{}, err
		}
	}
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return Binary{}, fmt.Errorf("cannot decode $binary base64: %w", err)
	}
	sub, err := strconv.ParseUint(subtype, 16, 8)
	if err != nil {
		return Binary{}, fmt.Errorf("cannot parse $binary subType: %w", err)
	}
	return Binary{
		Subtype: byte(sub),
		Data:    b,
	}, nil
}

// ToExtendedJSON implements ExtendedJSONValue.
func (Undefined) ToExtendedJSON(dst []byte, _ bool) []byte {
	return append(dst, `{"$undefined":true}`...)
}

// UndefinedFromExtendedJSON returns Undefined from {"$undefined":true}.
func UndefinedFromExtendedJSON(v *fastjson.Value) (Undefined, error) {
	_, err := getMember(v, "$undefined")
	return Undefined{}, err
}

// ToExtendedJSON implements ExtendedJSONValue.
func (re Regexp) ToExtendedJSON(dst []byte, _ bool) []byte {
	dst = append(dst, `{"$regularExpression":{"pattern":`...)
	dst = quicktemplate.AppendJSONString(dst, re.Pattern, true)
	dst = append(dst, `,"options":`...)
	dst = quicktemplate.AppendJSONString(dst, sortRegexpOptions(re.Options), true)
	return append(dst, `}}`...)
}

// RegexpFromExtendedJSON returns Regexp from {"$regularExpression":{"pattern":"...","options":"..."}}.
//
// Legacy {"$regex":"...","$options":"..."} form is accepted too.
func RegexpFromExtendedJSON(v *fastjson.Value) (Regexp, error) {
	var re Regexp
	var err error
	if rv := v.Get("$regularExpression"); rv != nil {
		if re.Pattern, err = getString(rv, "pattern"); err != nil {
			return re, err
		}
		re.Options, err = getString(rv, "options")
		return re, err
	}
	if re.Pattern, err = getString(v, "$regex"); err != nil {
		return re, err
	}
	if ov := v.Get("$options"); ov != nil {
		re.Options = string(ov.GetStringBytes())
	}
	return re, nil
}

// ToExtendedJSON implements ExtendedJSONValue.
func (p DBPointer) ToExtendedJSON(dst []byte, _ bool) []byte {
	dst = append(dst, `{"$dbPointer":{"$ref":`...)
	dst = quicktemplate.AppendJSONString(dst, p.Namespace, true)
	dst = append(dst, `,"$id":`...)
	dst = p.ID.ToExtendedJSON(dst, false)
	return append(dst, `}}`...)
}

// DBPointerFromExtendedJSON returns DBPointer from {"$dbPointer":{"$ref":"...","$id":{"$oid":"..."}}}.
func DBPointerFromExtendedJSON(v *fastjson.Value) (DBPointer, error) {
	var p DBPointer
	pv, err := getMember(v, "$dbPointer")
	if err != nil {
		return p, err
	}
	if p.Namespace, err = getString(pv, "$ref"); err != nil {
		return p, err
	}
	idv, err := getMember(pv, "$id")
	if err != nil {
		return p, err
	}
	p.ID, err = objectid.FromExtendedJSON(idv)
	return p, err
}

// ToExtendedJSON implements ExtendedJSONValue.
func (c Code) ToExtendedJSON(dst []byte, relaxed bool) []byte {
	dst = append(dst, `{"$code":`...)
	dst = quicktemplate.AppendJSONString(dst, c.Code, true)
	if c.Scope != nil {
		dst = append(dst, `,"$scope":`...)
		dst = appendExtendedJSON(dst, c.Scope, relaxed)
	}
	return append(dst, '}')
}

// CodeFromExtendedJSON returns Code from {"$code":"...","$scope":{...}}.
func CodeFromExtendedJSON(v *fastjson.Value) (Code, error) {
	var c Code
	var err error
	if c.Code, err = getString(v, "$code"); err != nil {
		return c, err
	}
	sv := v.Get("$scope")
	if sv == nil {
		return c, nil
	}
	if sv.Type() != fastjson.TypeObject {
		return c, fmt.Errorf("$scope must contain object; got %s", sv)
	}
	scope, err := documentFromExtendedJSON(sv)
	if err != nil {
		return c, fmt.Errorf("cannot parse $scope: %w", err)
	}
	c.Scope = scope
	return c, nil
}

// ToExtendedJSON implements ExtendedJSONValue.
func (MinKey) ToExtendedJSON(dst []byte, _ bool) []byte {
	return append(dst, `{"$minKey":1}`...)
}

// MinKeyFromExtendedJSON returns MinKey from {"$minKey":1}.
func MinKeyFromExtendedJSON(v *fastjson.Value) (MinKey, error) {
	_, err := getMember(v, "$minKey")
	return MinKey{}, err
}

// ToExtendedJSON implements ExtendedJSONValue.
func (MaxKey) ToExtendedJSON(dst []byte, _ bool) []byte {
	return append(dst, `{"$maxKey":1}`...)
}

// MaxKeyFromExtendedJSON returns MaxKey from {"$maxKey":1}.
func MaxKeyFromExtendedJSON(v *fastjson.Value) (MaxKey, error) {
	_, err := getMember(v, "$maxKey")
	return MaxKey{}, err
}

// ToExtendedJSON implements ExtendedJSONValue.
func (ts Timestamp) ToExtendedJSON(dst []byte, _ bool) []byte {
	dst = append(dst, `{"$timestamp":{"t":`...)
	dst = strconv.AppendUint(dst, uint64(ts.T()), 10)
	dst = append(dst, `,"i":`...)
	dst = strconv.AppendUint(dst, uint64(ts.I()), 10)
	return append(dst, `}}`...)
}

// TimestampFromExtendedJSON returns Timestamp from {"$timestamp":{"t":<seconds>,"i":<ordinal>}}.
func TimestampFromExtendedJSON(v *fastjson.Value) (Timestamp, error) {
	tv, err := getMember(v, "$timestamp")
	if err != nil {
		return Timestamp{}, err
	}
	t, err := getUint32(tv, "t")
	if err != nil {
		return Timestamp{}, err
	}
	i, err := getUint32(tv, "i")
	if err != nil {
		return Timestamp{}, err
	}
	return NewTimestamp(t, i), nil
}

// ToExtendedJSON implements ExtendedJSONValue.
func (ref DBRef) ToExtendedJSON(dst []byte, relaxed bool) []byte {
	dst = append(dst, `{"$ref":`...)
	dst = quicktemplate.AppendJSONString(dst, ref.Collection, true)
	dst = append(dst, `,"$id":`...)
	dst = appendExtendedJSON(dst, ref.ID, relaxed)
	if ref.DB != "" {
		dst = append(dst, `,"$db":`...)
		dst = quicktemplate.AppendJSONString(dst, ref.DB, true)
	}
	for _, e := range ref.Fields {
		dst = append(dst, ',')
		dst = quicktemplate.AppendJSONString(dst, e.Key, true)
		dst = append(dst, ':')
		dst = appendExtendedJSON(dst, e.Value, relaxed)
	}
	return append(dst, '}')
}

// DBRefFromExtendedJSON returns DBRef from {"$ref":"...","$id":...,"$db":"...",...}.
func DBRefFromExtendedJSON(v *fastjson.Value) (DBRef, error) {
	var ref DBRef
	var err error
	if ref.Collection, err = getString(v, "$ref"); err != nil {
		return ref, err
	}
	idv, err := getMember(v, "$id")
	if err != nil {
		return ref, err
	}
	if ref.ID, err = valueFromExtendedJSON(idv); err != nil {
		return ref, fmt.Errorf("cannot parse $id: %w", err)
	}
	if dbv := v.Get("$db"); dbv != nil {
		ref.DB = string(dbv.GetStringBytes())
	}
	doc, err := documentFromExtendedJSON(v)
	if err != nil {
		return ref, err
	}
	for _, e := range doc {
		switch e.Key {
		case "$ref", "$id", "$db":
		default:
			ref.Fields = append(ref.Fields, e)
		}
	}
	return ref, nil
}

// appendExtendedJSON appends Extended JSON representation of the value tree v to dst.
//
// It is used for nested values of Code scopes and DBRefs.
func appendExtendedJSON(dst []byte, v any, relaxed bool) []byte {
	switch x := v.(type) {
	case nil:
		return append(dst, "null"...)
	case ExtendedJSONValue:
		return x.ToExtendedJSON(dst, relaxed)
	case bool:
		return strconv.AppendBool(dst, x)
	case string:
		return quicktemplate.AppendJSONString(dst, x, true)
	case int32:
		return Int32(x).ToExtendedJSON(dst, relaxed)
	case int:
		return appendExtendedJSON(dst, int64(x), relaxed)
	case int64:
		if x >= math.MinInt32 && x <= math.MaxInt32 {
			return Int32(x).ToExtendedJSON(dst, relaxed)
		}
		return long.FromInt64(x).ToExtendedJSON(dst, relaxed)
	case float64:
		return Double(x).ToExtendedJSON(dst, relaxed)
	case time.Time:
		return NewDateTime(x).ToExtendedJSON(dst, relaxed)
	case []byte:
		return Binary{Data: x}.ToExtendedJSON(dst, relaxed)
	case *regexp.Regexp:
		pattern, options := splitRegexp(x)
		return Regexp{Pattern: pattern, Options: options}.ToExtendedJSON(dst, relaxed)
	case Document:
		dst = append(dst, '{')
		for i, e := range x {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = quicktemplate.AppendJSONString(dst, e.Key, true)
			dst = append(dst, ':')
			dst = appendExtendedJSON(dst, e.Value, relaxed)
		}
		return append(dst, '}')
	case Array:
		dst = append(dst, '[')
		for i, item := range x {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendExtendedJSON(dst, item, relaxed)
		}
		return append(dst, ']')
	default:
		return append(dst, "null"...)
	}
}

// valueFromExtendedJSON returns the value tree for the Extended JSON value v.
func valueFromExtendedJSON(v *fastjson.Value) (any, error) {
	switch v.Type() {
	case fastjson.TypeNull:
		return nil, nil
	case fastjson.TypeTrue:
		return true, nil
	case fastjson.TypeFalse:
		return false, nil
	case fastjson.TypeString:
		return string(v.GetStringBytes()), nil
	case fastjson.TypeNumber:
		if n, err := v.Int64(); err == nil {
			if n >= math.MinInt32 && n <= math.MaxInt32 {
				return Int32(n), nil
			}
			return long.FromInt64(n), nil
		}
		return DoubleFromExtendedJSON(v)
	case fastjson.TypeArray:
		items := v.GetArray()
		a := make(Array, 0, len(items))
		for _, item := range items {
			x, err := valueFromExtendedJSON(item)
			if err != nil {
				return nil, err
			}
			a = append(a, x)
		}
		return a, nil
	}

	o := v.GetObject()
	switch {
	case o.Get("$oid") != nil:
		return objectid.FromExtendedJSON(v)
	case o.Get("$numberLong") != nil:
		return long.FromExtendedJSON(v)
	case o.Get("$numberDecimal") != nil:
		return decimal128.FromExtendedJSON(v)
	case o.Get("$numberInt") != nil:
		return Int32FromExtendedJSON(v)
	case o.Get("$numberDouble") != nil:
		return DoubleFromExtendedJSON(v)
	case o.Get("$date") != nil:
		return DateTimeFromExtendedJSON(v)
	case o.Get("$binary") != nil:
		return BinaryFromExtendedJSON(v)
	case o.Get("$symbol") != nil:
		return SymbolFromExtendedJSON(v)
	case o.Get("$regularExpression") != nil, o.Get("$regex") != nil && o.Get("$options") != nil:
		return RegexpFromExtendedJSON(v)
	case o.Get("$timestamp") != nil:
		return TimestampFromExtendedJSON(v)
	case o.Get("$code") != nil:
		return CodeFromExtendedJSON(v)
	case o.Get("$dbPointer") != nil:
		return DBPointerFromExtendedJSON(v)
	case o.Get("$minKey") != nil:
		return MinKey{}, nil
	case o.Get("$maxKey") != nil:
		return MaxKey{}, nil
	case o.Get("$undefined") != nil:
		return Undefined{}, nil
	case o.Get("$ref") != nil && o.Get("$id") != nil:
		return DBRefFromExtendedJSON(v)
	}
	return documentFromExtendedJSON(v)
}

func documentFromExtendedJSON(v *fastjson.Value) (Document, error) {
	o, err := v.Object()
	if err != nil {
		return nil, err
	}
	doc := make(Document, 0, o.Len())
	o.Visit(func(k []byte, fv *fastjson.Value) {
		if err != nil {
			return
		}
		var x any
		x, err = valueFromExtendedJSON(fv)
		if err != nil {
			err = fmt.Errorf("cannot parse %q: %w", k, err)
			return
		}
		doc = append(doc, Element{
			Key:   string(k),
			Value: x,
		})
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func getMember(v *fastjson.Value, key string) (*fastjson.Value, error) {
	mv := v.Get(key)
	if mv == nil {
		return nil, fmt.Errorf("missing %s in %s", key, v)
	}
	return mv, nil
}

func getString(v *fastjson.Value, key string) (string, error) {
	mv, err := getMember(v, key)
	if err != nil {
		return "", err
	}
	s, err := mv.StringBytes()
	if err != nil {
		return "", fmt.Errorf("%s must contain string; got %s", key, mv)
	}
	return string(s), nil
}

func getUint32(v *fastjson.Value, key string) (uint32, error) {
	mv, err := getMember(v, key)
	if err != nil {
		return 0, err
	}
	n, err := mv.Uint64()
	if err != nil || n > math.MaxUint32 {
		return 0, fmt.Errorf("%s must contain uint32; got %s", key, mv)
	}
	return uint32(n), nil
}

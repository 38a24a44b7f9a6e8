package long

import (
	"fmt"

	"github.com/valyala/fastjson"

	"github.com/VictoriaMetrics/bson/lib/encoding"
)

// ToExtendedJSON appends Extended JSON representation of l to dst.
//
// Canonical form is {"$numberLong":"<decimal>"}, while relaxed form is a plain JSON number,
// which may lose precision outside the safe integer range.
func (l Long) ToExtendedJSON(dst []byte, relaxed bool) []byte {
	if relaxed {
		return encoding.AppendFloat64(dst, l.ToNumber())
	}
	dst = append(dst, `{"$numberLong":"`...)
	dst = l.AppendDecimal(dst)
	return append(dst, `"}`...)
}

// FromExtendedJSON returns signed Long from Extended JSON value v.
//
// Both canonical {"$numberLong":"..."} and relaxed number forms are accepted.
func FromExtendedJSON(v *fastjson.Value) (Long, error) {
	switch v.Type() {
	case fastjson.TypeNumber:
		if n, err := v.Int64(); err == nil {
			return FromInt64(n), nil
		}
		f, err := v.Float64()
		if err != nil {
			return Zero, fmt.Errorf("cannot parse Long from %s: %w", v, err)
		}
		return FromNumber(f, false), nil
	case fastjson.TypeObject:
		sv := v.Get("$numberLong")
		if sv == nil {
			return Zero, fmt.Errorf("missing $numberLong in %s", v)
		}
		s, err := sv.StringBytes()
		if err != nil {
			return Zero, fmt.Errorf("$numberLong must contain string; got %s", sv)
		}
		return FromString(string(s), 10, false)
	default:
		return Zero, fmt.Errorf("cannot parse Long from %s", v)
	}
}

package decimal128

import (
	"fmt"

	"github.com/valyala/fastjson"
	"github.com/valyala/quicktemplate"
)

// ToExtendedJSON appends {"$numberDecimal":"<value>"} to dst.
//
// Canonical and relaxed forms are identical.
func (d Decimal128) ToExtendedJSON(dst []byte, _ bool) []byte {
	dst = append(dst, `{"$numberDecimal":`...)
	dst = quicktemplate.AppendJSONString(dst, d.String(), true)
	return append(dst, '}')
}

// FromExtendedJSON returns Decimal128 from {"$numberDecimal":"<value>"} object.
func FromExtendedJSON(v *fastjson.Value) (Decimal128, error) {
	sv := v.Get("$numberDecimal")
	if sv == nil {
		return Decimal128{}, fmt.Errorf("missing $numberDecimal in %s", v)
	}
	s, err := sv.StringBytes()
	if err != nil {
		return Decimal128{}, fmt.Errorf("$numberDecimal must contain string; got %s", sv)
	}
	return Parse(string(s))
}

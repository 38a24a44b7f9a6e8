package objectid

import (
	"fmt"

	"github.com/valyala/fastjson"
)

// ToExtendedJSON appends {"$oid":"<hex>"} to dst.
//
// Canonical and relaxed forms are identical.
func (id ObjectID) ToExtendedJSON(dst []byte, _ bool) []byte {
	dst = append(dst, `{"$oid":"`...)
	dst = id.AppendHex(dst)
	return append(dst, `"}`...)
}

// FromExtendedJSON returns ObjectID from {"$oid":"<hex>"} object.
func FromExtendedJSON(v *fastjson.Value) (ObjectID, error) {
	sv := v.Get("$oid")
	if sv == nil {
		return ObjectID{}, fmt.Errorf("missing $oid in %s", v)
	}
	s, err := sv.StringBytes()
	if err != nil {
		return ObjectID{}, fmt.Errorf("$oid must contain string; got %s", sv)
	}
	return FromHex(string(s))
}

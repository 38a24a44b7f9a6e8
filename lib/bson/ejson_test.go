package bson

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/valyala/fastjson"

	"github.com/VictoriaMetrics/bson/lib/decimal128"
	"github.com/VictoriaMetrics/bson/lib/long"
	"github.com/VictoriaMetrics/bson/lib/objectid"
)

func TestToExtendedJSON(t *testing.T) {
	f := func(v ExtendedJSONValue, canonicalExpected, relaxedExpected string) {
		t.Helper()

		canonical := v.ToExtendedJSON(nil, false)
		if string(canonical) != canonicalExpected {
			t.Fatalf("unexpected canonical form for %#v; got %s; want %s", v, canonical, canonicalExpected)
		}
		relaxed := v.ToExtendedJSON(nil, true)
		if string(relaxed) != relaxedExpected {
			t.Fatalf("unexpected relaxed form for %#v; got %s; want %s", v, relaxed, relaxedExpected)
		}
		for _, s := range [][]byte{canonical, relaxed} {
			if err := fastjson.ValidateBytes(s); err != nil {
				t.Fatalf("invalid JSON %s: %s", s, err)
			}
		}
	}

	f(Double(1), `{"$numberDouble":"1.0"}`, `1`)
	f(Double(-1.5), `{"$numberDouble":"-1.5"}`, `-1.5`)
	f(Double(math.Copysign(0, -1)), `{"$numberDouble":"-0.0"}`, `0`)
	f(Double(1e21), `{"$numberDouble":"1e+21"}`, `1e+21`)
	f(Double(math.Inf(1)), `{"$numberDouble":"Infinity"}`, `{"$numberDouble":"Infinity"}`)
	f(Double(math.NaN()), `{"$numberDouble":"NaN"}`, `{"$numberDouble":"NaN"}`)
	f(Int32(-5), `{"$numberInt":"-5"}`, `-5`)
	f(DateTime(1577836800000), `{"$date":{"$numberLong":"1577836800000"}}`, `{"$date":"2020-01-01T00:00:00.000Z"}`)
	f(DateTime(-1), `{"$date":{"$numberLong":"-1"}}`, `{"$date":{"$numberLong":"-1"}}`)
	f(Symbol(`a"b`), `{"$symbol":"a\"b"}`, `{"$symbol":"a\"b"}`)
	f(Binary{Subtype: BinarySubtypeUUID, Data: []byte("abc")}, `{"$binary":{"base64":"YWJj","subType":"04"}}`, `{"$binary":{"base64":"YWJj","subType":"04"}}`)
	f(Undefined{}, `{"$undefined":true}`, `{"$undefined":true}`)
	f(Regexp{Pattern: "a/b", Options: "mi"}, `{"$regularExpression":{"pattern":"a/b","options":"im"}}`, `{"$regularExpression":{"pattern":"a/b","options":"im"}}`)
	f(DBPointer{Namespace: "db.c", ID: objectid.ObjectID{1}}, `{"$dbPointer":{"$ref":"db.c","$id":{"$oid":"010000000000000000000000"}}}`, `{"$dbPointer":{"$ref":"db.c","$id":{"$oid":"010000000000000000000000"}}}`)
	f(Code{Code: "x"}, `{"$code":"x"}`, `{"$code":"x"}`)
	f(Code{Code: "x", Scope: Document{{Key: "a", Value: Int32(1)}}}, `{"$code":"x","$scope":{"a":{"$numberInt":"1"}}}`, `{"$code":"x","$scope":{"a":1}}`)
	f(MinKey{}, `{"$minKey":1}`, `{"$minKey":1}`)
	f(MaxKey{}, `{"$maxKey":1}`, `{"$maxKey":1}`)
	f(NewTimestamp(1, 2), `{"$timestamp":{"t":1,"i":2}}`, `{"$timestamp":{"t":1,"i":2}}`)
	f(DBRef{Collection: "c", ID: int64(1 << 40), DB: "d", Fields: Document{{Key: "x", Value: Array{true, nil}}}},
		`{"$ref":"c","$id":{"$numberLong":"1099511627776"},"$db":"d","x":[true,null]}`,
		`{"$ref":"c","$id":1099511627776,"$db":"d","x":[true,null]}`)
}

func TestFromExtendedJSON(t *testing.T) {
	f := func(s string, vExpected any) {
		t.Helper()

		var p fastjson.Parser
		v, err := p.Parse(s)
		if err != nil {
			t.Fatalf("cannot parse %s: %s", s, err)
		}
		result, err := valueFromExtendedJSON(v)
		if err != nil {
			t.Fatalf("unexpected error for %s: %s", s, err)
		}
		if diff := cmp.Diff(vExpected, result, cmpOpts...); diff != "" {
			t.Fatalf("unexpected value for %s (-want +got):\n%s", s, diff)
		}
	}

	f(`null`, nil)
	f(`true`, true)
	f(`"x"`, "x")
	f(`1`, Int32(1))
	f(`1099511627776`, long.FromInt64(1<<40))
	f(`1.5`, Double(1.5))
	f(`{"$numberDouble":"-0.0"}`, Double(math.Copysign(0, -1)))
	f(`{"$numberDouble":"-Infinity"}`, Double(math.Inf(-1)))
	f(`{"$numberInt":"7"}`, Int32(7))
	f(`{"$numberLong":"-9"}`, long.FromInt64(-9))
	f(`{"$numberDecimal":"1.5"}`, decimal128.MustParse("1.5"))
	f(`{"$oid":"010000000000000000000000"}`, objectid.ObjectID{1})
	f(`{"$date":"2020-01-01T00:00:00.000Z"}`, DateTime(1577836800000))
	f(`{"$date":{"$numberLong":"-1"}}`, DateTime(-1))
	f(`{"$binary":{"base64":"YWJj","subType":"80"}}`, Binary{Subtype: BinarySubtypeUserDefined, Data: []byte("abc")})
	f(`{"$binary":"YWJj","$type":"00"}`, Binary{Data: []byte("abc")})
	f(`{"$symbol":"s"}`, Symbol("s"))
	f(`{"$regularExpression":{"pattern":"a","options":"i"}}`, Regexp{Pattern: "a", Options: "i"})
	f(`{"$regex":"a","$options":"m"}`, Regexp{Pattern: "a", Options: "m"})
	f(`{"$timestamp":{"t":4294967295,"i":1}}`, NewTimestamp(math.MaxUint32, 1))
	f(`{"$code":"x"}`, Code{Code: "x"})
	f(`{"$code":"x","$scope":{"a":1}}`, Code{Code: "x", Scope: Document{{Key: "a", Value: Int32(1)}}})
	f(`{"$dbPointer":{"$ref":"n","$id":{"$oid":"010000000000000000000000"}}}`, DBPointer{Namespace: "n", ID: objectid.ObjectID{1}})
	f(`{"$minKey":1}`, MinKey{})
	f(`{"$maxKey":1}`, MaxKey{})
	f(`{"$undefined":true}`, Undefined{})
	f(`{"$ref":"c","$id":1,"$db":"d","x":[]}`, DBRef{Collection: "c", ID: Int32(1), DB: "d", Fields: Document{{Key: "x", Value: Array{}}}})
	f(`{"a":{"b":[1,"x"]}}`, Document{{Key: "a", Value: Document{{Key: "b", Value: Array{Int32(1), "x"}}}}})
}

func TestFromExtendedJSONFailure(t *testing.T) {
	f := func(s string, parse func(v *fastjson.Value) error) {
		t.Helper()

		var p fastjson.Parser
		v, err := p.Parse(s)
		if err != nil {
			t.Fatalf("cannot parse %s: %s", s, err)
		}
		if err := parse(v); err == nil {
			t.Fatalf("expecting non-nil error for %s", s)
		}
	}

	f(`{"$numberInt":"x"}`, func(v *fastjson.Value) error {
		_, err := Int32FromExtendedJSON(v)
		return err
	})
	f(`4294967296`, func(v *fastjson.Value) error {
		_, err := Int32FromExtendedJSON(v)
		return err
	})
	f(`{"$numberDouble":1}`, func(v *fastjson.Value) error {
		_, err := DoubleFromExtendedJSON(v)
		return err
	})
	f(`{"$date":"yesterday"}`, func(v *fastjson.Value) error {
		_, err := DateTimeFromExtendedJSON(v)
		return err
	})
	f(`{"$binary":{"base64":"!!!","subType":"00"}}`, func(v *fastjson.Value) error {
		_, err := BinaryFromExtendedJSON(v)
		return err
	})
	f(`{"$binary":{"base64":"YWJj","subType":"zz"}}`, func(v *fastjson.Value) error {
		_, err := BinaryFromExtendedJSON(v)
		return err
	})
	f(`{"$timestamp":{"t":-1,"i":0}}`, func(v *fastjson.Value) error {
		_, err := TimestampFromExtendedJSON(v)
		return err
	})
	f(`{"$code":"x","$scope":1}`, func(v *fastjson.Value) error {
		_, err := CodeFromExtendedJSON(v)
		return err
	})
	f(`{"$id":1}`, func(v *fastjson.Value) error {
		_, err := DBRefFromExtendedJSON(v)
		return err
	})
	f(`{}`, func(v *fastjson.Value) error {
		_, err := MinKeyFromExtendedJSON(v)
		return err
	})
}

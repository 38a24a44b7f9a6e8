package bson

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/VictoriaMetrics/bson/lib/encoding"
)

func genKey() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-z_$][a-z0-9_.]{0,7}`)
}

func genValue(depth int) *rapid.Generator[any] {
	return rapid.Custom(func(t *rapid.T) any {
		kinds := 7
		if depth > 0 {
			kinds = 9
		}
		switch rapid.IntRange(0, kinds-1).Draw(t, "kind") {
		case 0:
			return Int32(rapid.Int32().Draw(t, "int32"))
		case 1:
			return rapid.Int64Range(-maxSafeInteger, maxSafeInteger).Draw(t, "int64")
		case 2:
			f := rapid.Float64().Filter(func(f float64) bool {
				return !math.IsNaN(f)
			}).Draw(t, "double")
			return Double(f)
		case 3:
			return rapid.String().Draw(t, "string")
		case 4:
			return rapid.Bool().Draw(t, "bool")
		case 5:
			return nil
		case 6:
			return Binary{
				Subtype: rapid.SampledFrom([]byte{BinarySubtypeFunction, BinarySubtypeByteArray, BinarySubtypeUUID, BinarySubtypeUserDefined}).Draw(t, "subtype"),
				Data:    rapid.SliceOfN(rapid.Byte(), 1, 8).Draw(t, "data"),
			}
		case 7:
			return genDocument(depth-1).Draw(t, "document")
		default:
			items := rapid.SliceOfN(genValue(depth-1), 0, 3).Draw(t, "items")
			a := Array{}
			return append(a, items...)
		}
	})
}

func genDocument(depth int) *rapid.Generator[Document] {
	return rapid.Custom(func(t *rapid.T) Document {
		n := rapid.IntRange(0, 4).Draw(t, "fields")
		doc := Document{}
		for i := 0; i < n; i++ {
			doc = append(doc, Element{
				Key:   genKey().Draw(t, "key"),
				Value: genValue(depth).Draw(t, "value"),
			})
		}
		return doc
	})
}

func TestSerializeDeserializeProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc := genDocument(2).Draw(t, "doc")

		data, err := Serialize(doc, nil)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		// The size prefix matches the length and the last byte is the terminator.
		if n := int(encoding.UnmarshalInt32LE(data)); n != len(data) {
			t.Fatalf("unexpected size prefix; got %d; want %d", n, len(data))
		}
		if data[len(data)-1] != 0 {
			t.Fatalf("unexpected terminator 0x%02x", data[len(data)-1])
		}

		size, err := CalculateObjectSize(doc, nil)
		if err != nil {
			t.Fatalf("unexpected error in CalculateObjectSize: %s", err)
		}
		if size != len(data) {
			t.Fatalf("unexpected size; got %d; want %d", size, len(data))
		}

		result, err := Deserialize(data, nil)
		if err != nil {
			t.Fatalf("cannot decode the encoded document: %s", err)
		}
		if diff := cmp.Diff(doc, result, cmpOpts...); diff != "" {
			t.Fatalf("unexpected document after round trip (-want +got):\n%s", diff)
		}
	})
}

func TestDeserializeNeverPanics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "data")
		if len(data) >= 4 && rapid.Bool().Draw(t, "fixSize") {
			encoding.PutInt32LE(data, 0, int32(len(data)))
		}
		_, _ = Deserialize(data, nil)
		_, _ = Deserialize(data, &DeserializeOptions{AllowObjectSmallerThanBufferSize: true})
	})
}

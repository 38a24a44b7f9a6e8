package bson

import (
	"fmt"
	"slices"
	"time"

	"github.com/VictoriaMetrics/bson/lib/long"
	"github.com/VictoriaMetrics/bson/lib/objectid"
)

// Type is BSON element type tag.
type Type byte

// BSON element types.
const (
	TypeDouble        Type = 0x01
	TypeString        Type = 0x02
	TypeDocument      Type = 0x03
	TypeArray         Type = 0x04
	TypeBinary        Type = 0x05
	TypeUndefined     Type = 0x06
	TypeObjectID      Type = 0x07
	TypeBoolean       Type = 0x08
	TypeDateTime      Type = 0x09
	TypeNull          Type = 0x0a
	TypeRegex         Type = 0x0b
	TypeDBPointer     Type = 0x0c
	TypeCode          Type = 0x0d
	TypeSymbol        Type = 0x0e
	TypeCodeWithScope Type = 0x0f
	TypeInt32         Type = 0x10
	TypeTimestamp     Type = 0x11
	TypeInt64         Type = 0x12
	TypeDecimal128    Type = 0x13
	TypeMinKey        Type = 0xff
	TypeMaxKey        Type = 0x7f
)

var typeNames = map[Type]string{
	TypeDouble:        "double",
	TypeString:        "string",
	TypeDocument:      "document",
	TypeArray:         "array",
	TypeBinary:        "binary",
	TypeUndefined:     "undefined",
	TypeObjectID:      "objectId",
	TypeBoolean:       "bool",
	TypeDateTime:      "date",
	TypeNull:          "null",
	TypeRegex:         "regex",
	TypeDBPointer:     "dbPointer",
	TypeCode:          "javascript",
	TypeSymbol:        "symbol",
	TypeCodeWithScope: "javascriptWithScope",
	TypeInt32:         "int",
	TypeTimestamp:     "timestamp",
	TypeInt64:         "long",
	TypeDecimal128:    "decimal",
	TypeMinKey:        "minKey",
	TypeMaxKey:        "maxKey",
}

// String returns human-readable name for t.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(0x%02x)", byte(t))
}

// IsValid returns true if t is a known BSON type.
func (t Type) IsValid() bool {
	_, ok := typeNames[t]
	return ok
}

// Binary subtypes.
const (
	BinarySubtypeGeneric     byte = 0x00
	BinarySubtypeFunction    byte = 0x01
	BinarySubtypeByteArray   byte = 0x02
	BinarySubtypeUUIDOld     byte = 0x03
	BinarySubtypeUUID        byte = 0x04
	BinarySubtypeMD5         byte = 0x05
	BinarySubtypeEncrypted   byte = 0x06
	BinarySubtypeColumn      byte = 0x07
	BinarySubtypeUserDefined byte = 0x80
)

// Double is BSON double value.
//
// It is always encoded as BSON double regardless of NumberPolicy.
type Double float64

// Int32 is BSON 32-bit integer value.
type Int32 int32

// DateTime is BSON UTC datetime - milliseconds since unix epoch.
type DateTime int64

// NewDateTime returns DateTime for t.
func NewDateTime(t time.Time) DateTime {
	return DateTime(t.UnixMilli())
}

// Time returns dt as time.Time in UTC.
func (dt DateTime) Time() time.Time {
	return time.UnixMilli(int64(dt)).UTC()
}

// Symbol is deprecated BSON symbol value.
type Symbol string

// Binary is BSON binary value.
type Binary struct {
	Subtype byte
	Data    []byte
}

// Undefined is the absence marker.
//
// Fields with Undefined values are omitted by the encoder unless SerializeOptions.SerializeUndefinedAsNull is set.
// Array items with Undefined values are always encoded as null. The decoder returns Undefined for deprecated BSON undefined values.
type Undefined struct{}

// Regexp is BSON regular expression.
type Regexp struct {
	Pattern string
	Options string
}

// DBPointer is deprecated BSON DBPointer value.
type DBPointer struct {
	Namespace string
	ID        objectid.ObjectID
}

// Code is BSON JavaScript code value.
//
// Code is encoded as code with scope if Scope is non-nil.
type Code struct {
	Code  string
	Scope Document
}

// Function is a host-side callable with its JavaScript source.
//
// Functions are encoded as Code only if SerializeOptions.SerializeFunctions is set. Otherwise they are skipped.
type Function struct {
	Source string
	Scope  Document
}

// MinKey is BSON MinKey value, which compares lower than all the other values.
type MinKey struct{}

// MaxKey is BSON MaxKey value, which compares higher than all the other values.
type MaxKey struct{}

// Timestamp is BSON internal timestamp: 32-bit seconds and 32-bit ordinal packed into unsigned 64-bit integer.
type Timestamp struct {
	v long.Long
}

// NewTimestamp returns Timestamp for the given seconds t and ordinal i.
func NewTimestamp(t, i uint32) Timestamp {
	return Timestamp{
		v: long.FromBits(int32(i), int32(t), true),
	}
}

// TimestampFromLong returns Timestamp with the bits of l.
func TimestampFromLong(l long.Long) Timestamp {
	return Timestamp{
		v: l.ToUnsigned(),
	}
}

// T returns seconds part of ts.
func (ts Timestamp) T() uint32 {
	return uint32(ts.v.High())
}

// I returns ordinal part of ts.
func (ts Timestamp) I() uint32 {
	return uint32(ts.v.Low())
}

// Long returns ts as unsigned long.Long.
func (ts Timestamp) Long() long.Long {
	return ts.v
}

// String implements fmt.Stringer.
func (ts Timestamp) String() string {
	return fmt.Sprintf("Timestamp(%d, %d)", ts.T(), ts.I())
}

// DBRef is a reference to a document in another collection.
//
// It is encoded as embedded document {$ref, $id, $db, fields...}.
type DBRef struct {
	Collection string
	ID         any
	DB         string
	Fields     Document
}

// RawDocument is an encoded BSON document.
//
// It is copied as is by the encoder and is returned by the decoder for fields listed in DeserializeOptions.FieldsAsRaw.
type RawDocument []byte

// RawArray is an encoded BSON array.
type RawArray []byte

// Element is a document field.
type Element struct {
	Key   string
	Value any
}

// Document is an ordered list of fields.
//
// Duplicate keys are allowed and preserved.
type Document []Element

// Get returns the value of the first field with the given key.
func (d Document) Get(key string) (any, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Keys returns field keys in the original order.
func (d Document) Keys() []string {
	keys := make([]string, len(d))
	for i, e := range d {
		keys[i] = e.Key
	}
	return keys
}

// Map returns d as map.
//
// The last value wins for duplicate keys.
func (d Document) Map() map[string]any {
	m := make(map[string]any, len(d))
	for _, e := range d {
		m[e.Key] = e.Value
	}
	return m
}

// Set sets the value for the first field with the given key or appends a new field.
func (d *Document) Set(key string, value any) {
	for i := range *d {
		if (*d)[i].Key == key {
			(*d)[i].Value = value
			return
		}
	}
	*d = append(*d, Element{Key: key, Value: value})
}

// Delete removes all the fields with the given key.
func (d *Document) Delete(key string) {
	*d = slices.DeleteFunc(*d, func(e Element) bool {
		return e.Key == key
	})
}

// Array is BSON array.
type Array []any

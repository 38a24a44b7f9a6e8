// Package objectid implements BSON ObjectId values and the process-wide ObjectId generator.
package objectid

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/VictoriaMetrics/bson/lib/encoding"
)

// Size is the size of ObjectID in bytes.
const Size = 12

// ObjectID is a 12-byte identifier:
//
//   - 4-byte big-endian unix timestamp in seconds;
//   - 5-byte process-unique value;
//   - 3-byte big-endian counter.
type ObjectID [Size]byte

// HexSource is implemented by foreign identifiers, which can be converted to ObjectID via their hex representation.
type HexSource interface {
	Hex() string
}

// ByteSource is implemented by foreign identifiers, which can be converted to ObjectID via their raw bytes.
type ByteSource interface {
	Bytes() []byte
}

// New returns new ObjectID for the current time.
func New() ObjectID {
	return NewWithTime(uint32(time.Now().Unix()))
}

// NewWithTime returns new ObjectID for the given unix timestamp in seconds.
func NewWithTime(sec uint32) ObjectID {
	return ObjectID(Generate(sec))
}

// CreateFromTime returns ObjectID with the given unix timestamp in seconds and zeroed other bytes.
//
// Such ids are useful for range queries by creation time.
func CreateFromTime(sec uint32) ObjectID {
	var id ObjectID
	binary.BigEndian.PutUint32(id[:4], sec)
	return id
}

// FromHex returns ObjectID from 24-char hex string s.
func FromHex(s string) (ObjectID, error) {
	var id ObjectID
	if len(s) != 2*Size {
		return id, fmt.Errorf("%w: ObjectID hex string must contain %d chars; got %d chars", encoding.ErrInvalidArgument, 2*Size, len(s))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return ObjectID{}, fmt.Errorf("%w: cannot parse ObjectID hex string %q: %s", encoding.ErrInvalidArgument, s, err)
	}
	return id, nil
}

// MustFromHex is like FromHex, but panics on error.
func MustFromHex(s string) ObjectID {
	id, err := FromHex(s)
	if err != nil {
		panic(err)
	}
	return id
}

// FromBytes returns ObjectID from 12 bytes in b.
func FromBytes(b []byte) (ObjectID, error) {
	var id ObjectID
	if len(b) != Size {
		return id, fmt.Errorf("%w: ObjectID must contain %d bytes; got %d bytes", encoding.ErrInvalidArgument, Size, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// From converts v to ObjectID.
//
// The following values are accepted:
//
//   - nil - a new ObjectID is generated;
//   - integer - a new ObjectID is generated for the given unix timestamp in seconds;
//   - 24-char hex string or 12-byte raw string;
//   - 12-byte slice or array;
//   - ObjectID or *ObjectID;
//   - any value implementing HexSource or ByteSource.
func From(v any) (ObjectID, error) {
	switch t := v.(type) {
	case nil:
		return New(), nil
	case int:
		return NewWithTime(uint32(t)), nil
	case int64:
		return NewWithTime(uint32(t)), nil
	case uint32:
		return NewWithTime(t), nil
	}
	return parse(v)
}

// parse is like From, but never generates new ids.
func parse(v any) (ObjectID, error) {
	switch t := v.(type) {
	case ObjectID:
		return t, nil
	case *ObjectID:
		if t == nil {
			return ObjectID{}, fmt.Errorf("%w: nil *ObjectID", encoding.ErrInvalidArgument)
		}
		return *t, nil
	case [Size]byte:
		return ObjectID(t), nil
	case []byte:
		return FromBytes(t)
	case string:
		if len(t) == Size {
			return FromBytes([]byte(t))
		}
		return FromHex(t)
	case HexSource:
		return FromHex(t.Hex())
	case ByteSource:
		return FromBytes(t.Bytes())
	default:
		return ObjectID{}, fmt.Errorf("%w: cannot convert %T to ObjectID", encoding.ErrInvalidArgument, v)
	}
}

// IsValid returns true if v can be converted to ObjectID via From.
func IsValid(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case int, int64, uint32:
		return true
	}
	_, err := parse(v)
	return err == nil
}

// Hex returns 24-char lowercase hex representation of id.
func (id ObjectID) Hex() string {
	return hex.EncodeToString(id[:])
}

// AppendHex appends 24-char lowercase hex representation of id to dst.
func (id ObjectID) AppendHex(dst []byte) []byte {
	return hex.AppendEncode(dst, id[:])
}

// String implements fmt.Stringer.
func (id ObjectID) String() string {
	return id.Hex()
}

// Bytes returns a copy of id bytes.
func (id ObjectID) Bytes() []byte {
	return append([]byte(nil), id[:]...)
}

// IsZero returns true if id consists of zero bytes.
func (id ObjectID) IsZero() bool {
	return id == ObjectID{}
}

// Equals returns true if other represents the same id.
//
// other may be any value accepted by From except of nil and integers, which never equal to id.
// Hex strings are compared case-insensitively.
func (id ObjectID) Equals(other any) bool {
	if s, ok := other.(string); ok && len(s) == 2*Size {
		return strings.EqualFold(s, id.Hex())
	}
	o, err := parse(other)
	if err != nil {
		return false
	}
	return o.Hex() == id.Hex()
}

// GenerationTime returns the unix timestamp in seconds stored in id.
func (id ObjectID) GenerationTime() uint32 {
	return binary.BigEndian.Uint32(id[:4])
}

// SetGenerationTime overwrites the timestamp stored in id.
//
// Deprecated: ObjectID values are expected to be immutable. Use CreateFromTime instead.
func (id *ObjectID) SetGenerationTime(sec uint32) {
	binary.BigEndian.PutUint32(id[:4], sec)
}

// Timestamp returns the time stored in id.
func (id ObjectID) Timestamp() time.Time {
	return time.Unix(int64(id.GenerationTime()), 0).UTC()
}

// ProcessUnique returns the 5-byte process-unique part of id.
func (id ObjectID) ProcessUnique() [5]byte {
	var pu [5]byte
	copy(pu[:], id[4:9])
	return pu
}

// Counter returns the 3-byte counter stored in id.
func (id ObjectID) Counter() uint32 {
	return uint32(id[9])<<16 | uint32(id[10])<<8 | uint32(id[11])
}

// MarshalJSON implements json.Marshaler.
func (id ObjectID) MarshalJSON() ([]byte, error) {
	dst := make([]byte, 0, 2*Size+2)
	dst = append(dst, '"')
	dst = id.AppendHex(dst)
	dst = append(dst, '"')
	return dst, nil
}

package bson

import (
	"github.com/VictoriaMetrics/bson/lib/encoding"
)

const (
	// DefaultMaxDepth is the maximum nesting depth of documents and arrays accepted by default.
	DefaultMaxDepth = 256

	// DefaultMaxDocumentSize is the maximum size of encoded document.
	//
	// It is 16MiB server limit plus 1MiB for the command overhead.
	DefaultMaxDocumentSize = 17 * 1024 * 1024
)

// Error kinds returned by the package. Use errors.Is for checking them.
var (
	ErrMalformedSize     = encoding.ErrMalformedSize
	ErrTruncatedBuffer   = encoding.ErrTruncatedBuffer
	ErrInvalidCString    = encoding.ErrInvalidCString
	ErrInvalidUtf8       = encoding.ErrInvalidUtf8
	ErrInvalidBoolean    = encoding.ErrInvalidBoolean
	ErrUnknownType       = encoding.ErrUnknownType
	ErrCorruptedArray    = encoding.ErrCorruptedArray
	ErrCorruptedDocument = encoding.ErrCorruptedDocument
	ErrUnsupportedType   = encoding.ErrUnsupportedType
	ErrInvalidKey        = encoding.ErrInvalidKey
	ErrInvalidArgument   = encoding.ErrInvalidArgument
	ErrDepthExceeded     = encoding.ErrDepthExceeded
	ErrDocumentTooLarge  = encoding.ErrDocumentTooLarge
)

// NumberPolicy controls how float32 and float64 values are encoded.
type NumberPolicy int

const (
	// NumberAsDouble encodes all the floating-point values as BSON double.
	NumberAsDouble NumberPolicy = iota

	// NumberSmallestInteger encodes integral floating-point values as int32 if they fit it,
	// as int64 if they are safe integers, and as double otherwise.
	NumberSmallestInteger
)

// SerializeOptions contains options for Serialize, SerializeWithBufferAndIndex and AppendDocument.
//
// The zero value is valid and contains the default options.
type SerializeOptions struct {
	// CheckKeys enables rejecting keys containing '.' or starting with '$'.
	CheckKeys bool

	// SerializeFunctions enables encoding Function values as BSON code.
	// Function values are skipped otherwise.
	SerializeFunctions bool

	// SerializeUndefinedAsNull enables encoding document fields with Undefined values as null.
	// Such fields are omitted otherwise.
	SerializeUndefinedAsNull bool

	// NumberPolicy is the encoding policy for floating-point values.
	NumberPolicy NumberPolicy

	// MinInternalBufferSize is the minimum size of the scratch buffer.
	// Documents up to max(DefaultMaxDocumentSize, MinInternalBufferSize) bytes can be encoded.
	MinInternalBufferSize int

	// Index is the offset in the target buffer for SerializeWithBufferAndIndex.
	Index int

	// MaxDepth is the maximum nesting depth. DefaultMaxDepth is used if it is zero.
	MaxDepth int
}

func (opts *SerializeOptions) maxDocumentSize() int {
	if opts.MinInternalBufferSize > DefaultMaxDocumentSize {
		return opts.MinInternalBufferSize
	}
	return DefaultMaxDocumentSize
}

// CalculateObjectSizeOptions contains options for CalculateObjectSize.
//
// They must match SerializeOptions used for encoding in order to get the exact size.
type CalculateObjectSizeOptions struct {
	SerializeFunctions       bool
	SerializeUndefinedAsNull bool
	NumberPolicy             NumberPolicy
	MaxDepth                 int
}

// DeserializeOptions contains options for Deserialize and DeserializeStream.
//
// The zero value is valid and contains the default options.
type DeserializeOptions struct {
	// Index is the offset of the document in the buffer.
	Index int

	// DisablePromoteLongs disables returning int64 values in the safe integer range as int64.
	// All the int64 values are returned as long.Long if it is set.
	DisablePromoteLongs bool

	// PromoteBuffers enables returning generic binary values as []byte instead of Binary.
	PromoteBuffers bool

	// PromoteValues enables returning Go values instead of BSON wrappers:
	// float64 instead of Double, int32 instead of Int32, time.Time instead of DateTime and string instead of Symbol.
	PromoteValues bool

	// FieldsAsRaw contains field names, which must be returned as RawDocument or RawArray.
	FieldsAsRaw map[string]bool

	// BSONRegExp disables converting BSON regular expressions to *regexp.Regexp.
	BSONRegExp bool

	// AllowObjectSmallerThanBufferSize allows the buffer to contain extra bytes after the document.
	AllowObjectSmallerThanBufferSize bool

	// MaxDepth is the maximum nesting depth. DefaultMaxDepth is used if it is zero.
	MaxDepth int
}

func maxDepthOrDefault(n int) int {
	if n <= 0 {
		return DefaultMaxDepth
	}
	return n
}

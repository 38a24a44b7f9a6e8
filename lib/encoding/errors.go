package encoding

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is(err, ErrXxx) for checking the kind of the returned error.
var (
	ErrMalformedSize     = errors.New("malformed size")
	ErrTruncatedBuffer   = errors.New("truncated buffer")
	ErrInvalidCString    = errors.New("invalid cstring")
	ErrInvalidUtf8       = errors.New("invalid utf-8")
	ErrInvalidBoolean    = errors.New("invalid boolean")
	ErrUnknownType       = errors.New("unknown type")
	ErrCorruptedArray    = errors.New("corrupted array")
	ErrCorruptedDocument = errors.New("corrupted document")
	ErrUnsupportedType   = errors.New("unsupported type")
	ErrInvalidKey        = errors.New("invalid key")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrDepthExceeded     = errors.New("depth exceeded")
	ErrDocumentTooLarge  = errors.New("document too large")
)

// Error is returned by BSON encoding and decoding routines.
//
// Decoding errors carry the byte offset where the problem has been detected,
// while encoding errors carry the dotted path to the offending value.
type Error struct {
	// Kind is one of ErrXxx values.
	Kind error

	// Offset is the offset in the decoded buffer. It is -1 for encoding errors.
	Offset int

	// Path is the dotted path to the offending value. It is empty for decoding errors.
	Path string

	// Msg is the human-readable details.
	Msg string
}

// NewDecodeError returns decoding error of the given kind at the given offset.
func NewDecodeError(kind error, offset int, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Offset: offset,
		Msg:    fmt.Sprintf(format, args...),
	}
}

// NewEncodeError returns encoding error of the given kind for the value at the given path.
func NewEncodeError(kind error, path string, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Offset: -1,
		Path:   path,
		Msg:    fmt.Sprintf(format, args...),
	}
}

// Error implements error interface.
func (e *Error) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Msg)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s at %q: %s", e.Kind, e.Path, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap returns e.Kind, so errors.Is works with ErrXxx values.
func (e *Error) Unwrap() error {
	return e.Kind
}

// KindName returns short name for the kind of err, which may be used as a metric label.
//
// An empty string is returned if err doesn't wrap any of ErrXxx values.
func KindName(err error) string {
	for _, k := range allKinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}

var allKinds = []struct {
	err  error
	name string
}{
	{ErrMalformedSize, "malformed_size"},
	{ErrTruncatedBuffer, "truncated_buffer"},
	{ErrInvalidCString, "invalid_cstring"},
	{ErrInvalidUtf8, "invalid_utf8"},
	{ErrInvalidBoolean, "invalid_boolean"},
	{ErrUnknownType, "unknown_type"},
	{ErrCorruptedArray, "corrupted_array"},
	{ErrCorruptedDocument, "corrupted_document"},
	{ErrUnsupportedType, "unsupported_type"},
	{ErrInvalidKey, "invalid_key"},
	{ErrInvalidArgument, "invalid_argument"},
	{ErrDepthExceeded, "depth_exceeded"},
	{ErrDocumentTooLarge, "document_too_large"},
}

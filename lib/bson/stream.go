package bson

import (
	"fmt"

	"github.com/VictoriaMetrics/bson/lib/encoding"
)

// DeserializeStream decodes n documents stored back to back in data starting at startIndex.
//
// Decoded documents are put into documents starting at docStartIndex. Trailing bytes after the n-th document are allowed.
// The offset after the last decoded document is returned.
func DeserializeStream(data []byte, startIndex, n int, documents []Document, docStartIndex int, opts *DeserializeOptions) (int, error) {
	if n < 0 || docStartIndex < 0 || docStartIndex+n > len(documents) {
		return startIndex, encoding.NewDecodeError(ErrInvalidArgument, startIndex, "cannot put %d documents at index %d into slice of %d documents", n, docStartIndex, len(documents))
	}
	d := newDecoder(opts)
	d.opts.AllowObjectSmallerThanBufferSize = true
	index := startIndex
	for i := 0; i < n; i++ {
		doc, next, err := d.deserialize(data, index)
		if err != nil {
			return index, fmt.Errorf("cannot decode document #%d: %w", i, err)
		}
		documents[docStartIndex+i] = doc
		index = next
	}
	return index, nil
}

// DocumentSize returns the declared size of the document starting at data[index:].
//
// It may be used for splitting concatenated documents before decoding them.
func DocumentSize(data []byte, index int) (int, error) {
	n, _, err := encoding.ReadInt32(data, index)
	if err != nil {
		return 0, err
	}
	if n < 5 {
		return 0, encoding.NewDecodeError(ErrMalformedSize, index, "document size must be at least 5 bytes; got %d", n)
	}
	if int(n) > len(data)-index {
		return 0, encoding.NewDecodeError(ErrTruncatedBuffer, index, "document size %d exceeds the remaining %d bytes", n, len(data)-index)
	}
	return int(n), nil
}

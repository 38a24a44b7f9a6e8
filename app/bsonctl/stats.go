package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/VictoriaMetrics/bson/lib/bson"
)

// inputStats holds statistics over the decoded documents.
type inputStats struct {
	documents       int
	bytes           int
	maxDocumentSize int
	maxDepth        int

	// types contains the number of elements per BSON type, including nested elements.
	types map[bson.Type]int
}

func newInputStats() *inputStats {
	return &inputStats{
		types: make(map[bson.Type]int),
	}
}

func (s *inputStats) addDocument(doc bson.Document, size int) {
	s.documents++
	s.bytes += size
	s.maxDocumentSize = max(s.maxDocumentSize, size)
	s.addElements(doc, 1)
}

func (s *inputStats) addElements(v any, depth int) {
	s.maxDepth = max(s.maxDepth, depth)
	switch x := v.(type) {
	case bson.Document:
		for _, e := range x {
			s.addValue(e.Value, depth)
		}
	case bson.Array:
		for _, item := range x {
			s.addValue(item, depth)
		}
	}
}

func (s *inputStats) addValue(v any, depth int) {
	typ, ok := bson.TypeOf(v)
	if !ok {
		return
	}
	s.types[typ]++
	switch x := v.(type) {
	case bson.Document, bson.Array:
		s.addElements(x, depth+1)
	case bson.Code:
		if x.Scope != nil {
			s.addElements(x.Scope, depth+1)
		}
	}
}

func (s *inputStats) writeTo(w io.Writer) error {
	_, err := fmt.Fprintf(w, "documents: %d\nbytes: %d\nmax_document_size: %d\nmax_depth: %d\n",
		s.documents, s.bytes, s.maxDocumentSize, s.maxDepth)
	if err != nil {
		return err
	}
	types := make([]bson.Type, 0, len(s.types))
	for typ := range s.types {
		types = append(types, typ)
	}
	slices.Sort(types)
	for _, typ := range types {
		if _, err := fmt.Fprintf(w, "type %s: %d\n", typ, s.types[typ]); err != nil {
			return err
		}
	}
	return nil
}

// collectStats decodes every document from paths and writes the statistics to w.
func collectStats(w io.Writer, paths []string, maxDocumentSize int) error {
	s := newInputStats()
	err := processInputs(paths, maxDocumentSize, func(_ string, doc []byte, offset int) error {
		d, err := bson.Deserialize(doc, nil)
		if err != nil {
			return fmt.Errorf("cannot decode document at offset %d: %w", offset, err)
		}
		s.addDocument(d, len(doc))
		return nil
	})
	if err != nil {
		return err
	}
	return s.writeTo(w)
}

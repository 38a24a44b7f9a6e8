package main

import (
	"fmt"
	"io"
	"time"

	"github.com/VictoriaMetrics/bson/lib/bson"
	"github.com/VictoriaMetrics/bson/lib/bsonjson"
	"github.com/VictoriaMetrics/bson/lib/slicesutil"
)

var documentsPool slicesutil.BufferPool[bson.Document]

// benchInput holds documents loaded for benchmarking.
type benchInput struct {
	// data contains all the documents stored back to back.
	data []byte

	// docs contains data split into documents.
	docs [][]byte
}

func loadBenchInput(paths []string, maxDocumentSize int) (*benchInput, error) {
	var bi benchInput
	err := processInputs(paths, maxDocumentSize, func(_ string, doc []byte, _ int) error {
		bi.data = append(bi.data, doc...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := forEachDocument(bi.data, maxDocumentSize, func(doc []byte, _ int) error {
		bi.docs = append(bi.docs, doc)
		return nil
	}); err != nil {
		return nil, err
	}
	if len(bi.docs) == 0 {
		return nil, fmt.Errorf("no documents found in %q", paths)
	}
	return &bi, nil
}

// runBenchmarks measures decoding, transcoding and encoding of the documents from paths and writes the results to w.
func runBenchmarks(w io.Writer, paths []string, maxDocumentSize, iterations int) error {
	if iterations <= 0 {
		return fmt.Errorf("-%s must be positive; got %d", benchIterations, iterations)
	}
	bi, err := loadBenchInput(paths, maxDocumentSize)
	if err != nil {
		return err
	}

	docs := documentsPool.Get()
	defer documentsPool.Put(docs)
	docs.Resize(len(bi.docs))

	benchmarks := []struct {
		name string
		f    func() error
	}{
		{
			name: "deserialize",
			f: func() error {
				for _, doc := range bi.docs {
					if _, err := bson.Deserialize(doc, nil); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			name: "deserialize_stream",
			f: func() error {
				_, err := bson.DeserializeStream(bi.data, 0, len(docs.B), docs.B, 0, nil)
				return err
			},
		},
		{
			name: "transcode",
			f: func() error {
				var dst []byte
				for _, doc := range bi.docs {
					var err error
					if dst, err = bsonjson.Transcode(dst[:0], doc); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			name: "serialize",
			f: func() error {
				var dst []byte
				for _, doc := range docs.B {
					var err error
					if dst, err = bson.AppendDocument(dst[:0], doc, nil); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}

	// The serialize benchmark needs decoded documents.
	if _, err := bson.DeserializeStream(bi.data, 0, len(docs.B), docs.B, 0, nil); err != nil {
		return err
	}

	for _, b := range benchmarks {
		start := time.Now()
		for i := 0; i < iterations; i++ {
			if err := b.f(); err != nil {
				return fmt.Errorf("%s failed: %w", b.name, err)
			}
		}
		d := time.Since(start)
		n := iterations * len(bi.docs)
		seconds := d.Seconds()
		_, err := fmt.Fprintf(w, "%s: %d documents in %.3fs; %.0f docs/s; %.2f MB/s\n",
			b.name, n, seconds, float64(n)/seconds, float64(iterations*len(bi.data))/seconds/1e6)
		if err != nil {
			return err
		}
	}
	return nil
}

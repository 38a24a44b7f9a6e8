package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/VictoriaMetrics/bson/lib/bsonjson"
)

// transcodeInputs writes every document from paths to w as a separate JSON line.
func transcodeInputs(w io.Writer, paths []string, maxDocumentSize int) (int, error) {
	bw := bufio.NewWriter(w)
	var dst []byte
	documents := 0
	err := processInputs(paths, maxDocumentSize, func(_ string, doc []byte, offset int) error {
		var err error
		dst, err = bsonjson.Transcode(dst[:0], doc)
		if err != nil {
			return fmt.Errorf("cannot transcode document at offset %d: %w", offset, err)
		}
		dst = append(dst, '\n')
		if _, err := bw.Write(dst); err != nil {
			return fmt.Errorf("cannot write JSON: %w", err)
		}
		documents++
		return nil
	})
	if err != nil {
		return documents, err
	}
	if err := bw.Flush(); err != nil {
		return documents, fmt.Errorf("cannot write JSON: %w", err)
	}
	return documents, nil
}

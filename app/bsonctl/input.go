package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/VictoriaMetrics/bson/app/bsonctl/barpool"
	"github.com/VictoriaMetrics/bson/lib/bson"
	"github.com/VictoriaMetrics/bson/lib/bytesutil"
)

// stdinPath is the path for reading the input from stdin.
const stdinPath = "-"

// expandInputs returns paths for files matching the given patterns.
//
// Patterns may contain `**` for matching nested directories. Stdin is read if patterns are empty.
func expandInputs(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return []string{stdinPath}, nil
	}
	var paths []string
	for _, pattern := range patterns {
		if pattern == stdinPath {
			paths = append(paths, stdinPath)
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("error while matching files via pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match pattern %q", pattern)
		}
		slices.Sort(matches)
		paths = append(paths, matches...)
	}
	return paths, nil
}

var inputBufPool bytesutil.ByteBufferPool

// readInput reads the whole file at path into bb.
func readInput(bb *bytesutil.ByteBuffer, path string) error {
	var r io.Reader = os.Stdin
	if path != stdinPath {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("cannot open %q: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	if _, err := bb.ReadFrom(r); err != nil {
		return fmt.Errorf("cannot read %q: %w", path, err)
	}
	return nil
}

// forEachDocument calls f for every document in data.
//
// data must contain documents stored back to back without gaps.
// f receives the document bytes and the offset of the document in data.
func forEachDocument(data []byte, maxDocumentSize int, f func(doc []byte, offset int) error) error {
	offset := 0
	for offset < len(data) {
		n, err := bson.DocumentSize(data, offset)
		if err != nil {
			return fmt.Errorf("cannot read document at offset %d: %w", offset, err)
		}
		if n > maxDocumentSize {
			return fmt.Errorf("document at offset %d has size %d bytes, which exceeds -%s=%d", offset, n, globalMaxDocumentSize, maxDocumentSize)
		}
		if err := f(data[offset:offset+n], offset); err != nil {
			return err
		}
		offset += n
	}
	return nil
}

// processInputs reads every file from paths and calls f for every document in it.
//
// A progress bar per file is shown unless progress bars are disabled.
func processInputs(paths []string, maxDocumentSize int, f func(path string, doc []byte, offset int) error) error {
	bufs := make([]*bytesutil.ByteBuffer, len(paths))
	bars := make([]*barpool.Bar, len(paths))
	defer func() {
		for _, bb := range bufs {
			if bb != nil {
				inputBufPool.Put(bb)
			}
		}
	}()
	for i, path := range paths {
		bb := inputBufPool.Get()
		bufs[i] = bb
		if err := readInput(bb, path); err != nil {
			return err
		}
		bars[i] = barpool.AddWithTemplate(fmt.Sprintf(barTpl, path), bb.Len())
	}
	if err := barpool.Start(); err != nil {
		return fmt.Errorf("cannot start progress bars: %w", err)
	}
	defer barpool.Stop()

	for i, path := range paths {
		bar := bars[i]
		err := forEachDocument(bufs[i].B, maxDocumentSize, func(doc []byte, offset int) error {
			if err := f(path, doc, offset); err != nil {
				return err
			}
			bar.Add(len(doc))
			return nil
		})
		if err != nil {
			return fmt.Errorf("cannot process %q: %w", path, err)
		}
	}
	return nil
}

const barTpl = `{{ blue "%s:" }} {{ counters . }} {{ bar . "[" "█" (cycle . "█") "▒" "]" }} {{ percent . }}`

package main

import (
	"fmt"
	"time"

	"github.com/VictoriaMetrics/bson/lib/bson"
	"github.com/VictoriaMetrics/bson/lib/logger"
)

// validateInputs decodes every document from paths and returns the number of invalid documents.
//
// Framing errors, which make impossible locating the next document, are returned as errors.
func validateInputs(paths []string, maxDocumentSize int) (int, int, error) {
	lt := logger.WithThrottler("validate", 5*time.Second)
	documents := 0
	invalid := 0
	err := processInputs(paths, maxDocumentSize, func(path string, doc []byte, offset int) error {
		documents++
		if _, err := bson.Deserialize(doc, nil); err != nil {
			invalid++
			lt.Errorf("invalid document in %q at offset %d: %s", path, offset, err)
		}
		return nil
	})
	if err != nil {
		return documents, invalid, err
	}
	if invalid > 0 {
		return documents, invalid, fmt.Errorf("found %d invalid documents out of %d documents", invalid, documents)
	}
	return documents, invalid, nil
}

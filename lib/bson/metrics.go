package bson

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"

	"github.com/VictoriaMetrics/bson/lib/encoding"
)

var (
	encodedDocuments = metrics.NewCounter(`bson_encoded_documents_total`)
	encodedBytes     = metrics.NewCounter(`bson_encoded_bytes_total`)
	decodedDocuments = metrics.NewCounter(`bson_decoded_documents_total`)
	decodedBytes     = metrics.NewCounter(`bson_decoded_bytes_total`)
)

func countError(op string, err error) {
	kind := encoding.KindName(err)
	if kind == "" {
		kind = "other"
	}
	metrics.GetOrCreateCounter(fmt.Sprintf(`bson_errors_total{op=%q,kind=%q}`, op, kind)).Inc()
}

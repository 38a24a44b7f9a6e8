package main

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/VictoriaMetrics/bson/lib/objectid"
)

// writeObjectIDs writes count new ObjectIds to w, one per line.
//
// The current time is used if sec is negative.
func writeObjectIDs(w io.Writer, count int, sec int64) error {
	if sec > math.MaxUint32 {
		return fmt.Errorf("-%s=%d cannot exceed %d", oidTime, sec, uint32(math.MaxUint32))
	}
	for i := 0; i < count; i++ {
		id := objectid.New()
		if sec >= 0 {
			id = objectid.NewWithTime(uint32(sec))
		}
		if _, err := fmt.Fprintln(w, id.Hex()); err != nil {
			return err
		}
	}
	return nil
}

// describeObjectID writes the parts of ObjectId with hex representation s to w.
func describeObjectID(w io.Writer, s string) error {
	id, err := objectid.FromHex(s)
	if err != nil {
		return err
	}
	pu := id.ProcessUnique()
	_, err = fmt.Fprintf(w, "hex: %s\ntimestamp: %d\ntime: %s\nprocess_unique: %x\ncounter: %d\n",
		id.Hex(), id.GenerationTime(), id.Timestamp().UTC().Format(time.RFC3339), pu[:], id.Counter())
	return err
}

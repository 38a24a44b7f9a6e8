package objectid

import (
	"crypto/rand"
	"encoding/binary"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/valyala/fastrand"
)

// counterMask limits the counter to 3 bytes.
const counterMask = 0xffffff

// generator holds the process-wide state for ObjectID generation.
//
// It is initialized once at process start and is never reset.
type generator struct {
	processUnique [5]byte
	counter       atomic.Uint32
}

var gen = newGenerator()

func newGenerator() *generator {
	g := &generator{}
	if _, err := rand.Read(g.processUnique[:]); err != nil {
		// Fall back to the identity of the current host and process.
		hostname, _ := os.Hostname()
		h := xxhash.Sum64String(hostname + ":" + strconv.Itoa(os.Getpid()))
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], h)
		copy(g.processUnique[:], b[:5])
	}
	g.counter.Store(fastrand.Uint32n(counterMask + 1))
	return g
}

// next returns the next counter value modulo 0x1000000.
func (g *generator) next() uint32 {
	return g.counter.Add(1) & counterMask
}

func (g *generator) generate(sec uint32) [Size]byte {
	var b [Size]byte
	binary.BigEndian.PutUint32(b[:4], sec)
	copy(b[4:9], g.processUnique[:])
	n := g.next()
	b[9] = byte(n >> 16)
	b[10] = byte(n >> 8)
	b[11] = byte(n)
	return b
}

// Generate returns 12 bytes of a new ObjectID for the given unix timestamp in seconds.
//
// It is safe calling Generate from concurrently running goroutines.
func Generate(sec uint32) [Size]byte {
	return gen.generate(sec)
}

package objectid

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/valyala/fastjson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/VictoriaMetrics/bson/lib/encoding"
)

func TestNewHexRoundTrip(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := New()
		idNew, err := FromHex(id.Hex())
		if err != nil {
			t.Fatalf("cannot parse %q: %s", id.Hex(), err)
		}
		if idNew != id {
			t.Fatalf("unexpected id after hex round trip; got %s; want %s", idNew, id)
		}
		if len(id.Hex()) != 24 {
			t.Fatalf("unexpected hex length: %d", len(id.Hex()))
		}
	}
}

func TestConsecutiveCounters(t *testing.T) {
	id1 := New()
	id2 := New()
	if id1 == id2 {
		t.Fatalf("consecutive ids must differ; got %s", id1)
	}
	if diff := (id2.Counter() - id1.Counter()) & counterMask; diff != 1 {
		t.Fatalf("unexpected counter difference; got %d; want 1; id1=%s, id2=%s", diff, id1, id2)
	}
	if id1.ProcessUnique() != id2.ProcessUnique() {
		t.Fatalf("process-unique part must be the same for all the ids")
	}
}

func TestCounterWrapAround(t *testing.T) {
	g := &generator{}
	g.counter.Store(counterMask - 1)
	b1 := g.generate(0)
	b2 := g.generate(0)
	id1 := ObjectID(b1)
	id2 := ObjectID(b2)
	if id1.Counter() != counterMask {
		t.Fatalf("unexpected counter; got %x; want %x", id1.Counter(), counterMask)
	}
	if id2.Counter() != 0 {
		t.Fatalf("counter must wrap around to zero; got %x", id2.Counter())
	}
}

func TestConcurrentGeneration(t *testing.T) {
	const workers = 8
	const perWorker = 1000
	ch := make(chan ObjectID, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				ch <- NewWithTime(123)
			}
		}()
	}
	wg.Wait()
	close(ch)

	m := make(map[ObjectID]struct{})
	for id := range ch {
		if _, ok := m[id]; ok {
			t.Fatalf("duplicate id generated: %s", id)
		}
		m[id] = struct{}{}
	}
}

func TestLayout(t *testing.T) {
	id := NewWithTime(0x01020304)
	if id[0] != 1 || id[1] != 2 || id[2] != 3 || id[3] != 4 {
		t.Fatalf("timestamp must be big-endian; got %x", id[:4])
	}
	if id.GenerationTime() != 0x01020304 {
		t.Fatalf("unexpected generation time: %x", id.GenerationTime())
	}
	if !id.Timestamp().Equal(time.Unix(0x01020304, 0)) {
		t.Fatalf("unexpected timestamp: %s", id.Timestamp())
	}
	pu := id.ProcessUnique()
	if string(id[4:9]) != string(pu[:]) {
		t.Fatalf("unexpected process-unique part")
	}

	id.SetGenerationTime(5)
	if id.GenerationTime() != 5 || id[3] != 5 {
		t.Fatalf("unexpected id after SetGenerationTime: %s", id)
	}

	id = CreateFromTime(0xaabbccdd)
	if id.Hex() != "aabbccdd0000000000000000" {
		t.Fatalf("unexpected CreateFromTime result: %s", id)
	}
}

func TestFrom(t *testing.T) {
	const hexStr = "507f1f77bcf86cd799439011"
	want := MustFromHex(hexStr)

	f := func(v any) {
		t.Helper()

		id, err := From(v)
		if err != nil {
			t.Fatalf("unexpected error for %T: %s", v, err)
		}
		if id != want {
			t.Fatalf("unexpected id for %T; got %s; want %s", v, id, want)
		}
		if !IsValid(v) {
			t.Fatalf("expecting %T value to be valid", v)
		}
		if !want.Equals(v) {
			t.Fatalf("expecting %T value to be equal to %s", v, want)
		}
	}

	f(hexStr)
	f("507F1F77BCF86CD799439011")
	f(string(want[:]))
	f(want[:])
	f([12]byte(want))
	f(want)
	f(&want)

	// foreign ids are accepted via Hex() and Bytes() accessors
	p, err := primitive.ObjectIDFromHex(hexStr)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	f(p)
	f(byteSource(want[:]))
}

type byteSource []byte

func (bs byteSource) Bytes() []byte {
	return bs
}

func TestFromGenerates(t *testing.T) {
	id, err := From(nil)
	if err != nil || id.IsZero() {
		t.Fatalf("expecting generated id; got %s, err=%v", id, err)
	}
	id, err = From(1000)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if id.GenerationTime() != 1000 {
		t.Fatalf("unexpected generation time: %d", id.GenerationTime())
	}
}

func TestFromFailure(t *testing.T) {
	f := func(v any) {
		t.Helper()

		_, err := From(v)
		if !errors.Is(err, encoding.ErrInvalidArgument) {
			t.Fatalf("unexpected error for %v: %v", v, err)
		}
		if IsValid(v) {
			t.Fatalf("expecting %v to be invalid", v)
		}
	}

	f("")
	f("abc")
	f("507f1f77bcf86cd79943901")
	f("507f1f77bcf86cd79943901z")
	f([]byte{1, 2, 3})
	f(1.5)
	f(struct{}{})

	if IsValid(nil) {
		t.Fatalf("nil must be invalid")
	}
}

func TestIsValidDoesntGenerate(t *testing.T) {
	counter := gen.counter.Load()
	for _, v := range []any{42, int64(42), uint32(42), "507f1f77bcf86cd799439011"} {
		if !IsValid(v) {
			t.Fatalf("expecting %T value to be valid", v)
		}
	}
	if n := gen.counter.Load(); n != counter {
		t.Fatalf("IsValid mustn't advance the counter; got %d; want %d", n, counter)
	}
}

func TestEquals(t *testing.T) {
	id := New()
	if id.Equals(nil) || id.Equals(123) || id.Equals("foo") {
		t.Fatalf("unexpected equality")
	}
	other := New()
	if id.Equals(other) {
		t.Fatalf("different ids must not be equal")
	}
	if !id.Equals(id.Hex()) {
		t.Fatalf("id must be equal to its hex representation")
	}
}

func TestMarshalJSON(t *testing.T) {
	id := MustFromHex("507f1f77bcf86cd799439011")
	data, err := json.Marshal(map[string]any{"id": id})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if string(data) != `{"id":"507f1f77bcf86cd799439011"}` {
		t.Fatalf("unexpected JSON: %s", data)
	}
}

func TestExtendedJSON(t *testing.T) {
	id := MustFromHex("507f1f77bcf86cd799439011")
	s := id.ToExtendedJSON(nil, false)
	if string(s) != `{"$oid":"507f1f77bcf86cd799439011"}` {
		t.Fatalf("unexpected Extended JSON: %s", s)
	}
	idNew, err := FromExtendedJSON(fastjson.MustParse(string(s)))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if idNew != id {
		t.Fatalf("unexpected id; got %s; want %s", idNew, id)
	}
	for _, s := range []string{`{}`, `{"$oid":1}`, `{"$oid":"xyz"}`} {
		if _, err := FromExtendedJSON(fastjson.MustParse(s)); err == nil {
			t.Fatalf("expecting non-nil error for %s", s)
		}
	}
}

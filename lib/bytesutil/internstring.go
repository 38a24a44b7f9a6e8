package bytesutil

import (
	"flag"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	internStringMaxLen = flag.Int("internStringMaxLen", 128, "The maximum length for document keys to intern. Decoded documents usually share a small set of keys, "+
		"so interning saves memory when decoding streams of documents. See also -internStringMaxEntries")
	internStringMaxEntries = flag.Int("internStringMaxEntries", 64*1024, "The maximum number of interned keys. The cache is reset when the limit is reached. "+
		"Zero disables interning. See also -internStringMaxLen")
)

type internStringMap struct {
	mutableLock  sync.Mutex
	mutable      map[string]string
	mutableReads uint64

	readonly atomic.Pointer[map[string]string]
}

func newInternStringMap() *internStringMap {
	m := &internStringMap{
		mutable: make(map[string]string),
	}
	readonly := make(map[string]string)
	m.readonly.Store(&readonly)
	return m
}

func (m *internStringMap) getReadonly() map[string]string {
	return *m.readonly.Load()
}

func (m *internStringMap) intern(s string) string {
	if isSkipCache(s) {
		return strings.Clone(s)
	}

	readonly := m.getReadonly()
	if sInterned, ok := readonly[s]; ok {
		// Fast path - the string has been found in readonly map.
		return sInterned
	}

	// Slower path - search for the string in mutable map under the lock.
	m.mutableLock.Lock()
	sInterned, ok := m.mutable[s]
	if !ok {
		readonly = m.getReadonly()
		sInterned, ok = readonly[s]
		if !ok {
			// Make a new copy for s in order to remove references from the decoded buffer s may refer to.
			sInterned = strings.Clone(s)
			m.mutable[sInterned] = sInterned
		}
	}
	m.mutableReads++
	if m.mutableReads > uint64(len(readonly)) {
		m.migrateMutableToReadonlyLocked()
		m.mutableReads = 0
	}
	m.mutableLock.Unlock()

	return sInterned
}

func (m *internStringMap) migrateMutableToReadonlyLocked() {
	readonly := m.getReadonly()
	if len(readonly)+len(m.mutable) > *internStringMaxEntries {
		// Start from scratch instead of tracking per-entry usage.
		readonly = nil
	}
	readonlyCopy := make(map[string]string, len(readonly)+len(m.mutable))
	for k, s := range readonly {
		readonlyCopy[k] = s
	}
	for k, s := range m.mutable {
		readonlyCopy[k] = s
	}
	m.mutable = make(map[string]string)
	m.readonly.Store(&readonlyCopy)
}

func (m *internStringMap) size() int {
	m.mutableLock.Lock()
	n := len(m.getReadonly()) + len(m.mutable)
	m.mutableLock.Unlock()
	return n
}

func isSkipCache(s string) bool {
	return *internStringMaxEntries <= 0 || len(s) > *internStringMaxLen
}

// InternBytes interns b as a string.
//
// The returned string never refers to b. This reduces the amounts of allocated memory
// when the same keys are decoded over and over.
func InternBytes(b []byte) string {
	return ism.intern(ToUnsafeString(b))
}

var ism = newInternStringMap()

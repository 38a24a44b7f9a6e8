package logger

import (
	"sync"
	"sync/atomic"
	"time"
)

var (
	logThrottlerRegistryMu = sync.Mutex{}
	logThrottlerRegistry   = make(map[string]*LogThrottler)
)

// WithThrottler returns a logger throttled by time - only one message in throttle duration will be logged.
// Each unique `name` gets its own throttler.
func WithThrottler(name string, throttle time.Duration) *LogThrottler {
	logThrottlerRegistryMu.Lock()
	defer logThrottlerRegistryMu.Unlock()

	lt, ok := logThrottlerRegistry[name]
	if ok {
		return lt
	}

	lt = &LogThrottler{
		name:     name,
		throttle: throttle,
	}
	logThrottlerRegistry[name] = lt
	return lt
}

// LogThrottler throttles Errorf calls.
//
// The number of suppressed messages is reported together with the next accepted message.
type LogThrottler struct {
	name     string
	throttle time.Duration

	// lastLogged is the unix timestamp in nanoseconds of the last accepted message.
	lastLogged atomic.Int64

	suppressed atomic.Uint64
}

func (lt *LogThrottler) accept() (uint64, bool) {
	now := time.Now().UnixNano()
	last := lt.lastLogged.Load()
	if last != 0 && now-last < int64(lt.throttle) {
		lt.suppressed.Add(1)
		return 0, false
	}
	if !lt.lastLogged.CompareAndSwap(last, now) {
		lt.suppressed.Add(1)
		return 0, false
	}
	return lt.suppressed.Swap(0), true
}

// Errorf logs an error message with throttling.
func (lt *LogThrottler) Errorf(format string, args ...any) {
	suppressed, ok := lt.accept()
	if !ok {
		return
	}
	if suppressed > 0 {
		ErrorfSkipframes(1, "suppressed %d messages similar to %q; "+format, append([]any{suppressed, lt.name}, args...)...)
		return
	}
	ErrorfSkipframes(1, format, args...)
}

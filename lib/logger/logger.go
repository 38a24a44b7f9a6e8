package logger

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/VictoriaMetrics/bson/lib/bytesutil"
)

var (
	loggerOutput      = flag.String("loggerOutput", "stderr", "Output for the logs. Supported values: stderr, stdout")
	disableTimestamps = flag.Bool("loggerDisableTimestamps", false, "Whether to disable writing timestamps in logs")

	errorsPerSecondLimit = flag.Int("loggerErrorsPerSecondLimit", 0, "Per-second limit on the number of ERROR messages. If more than the given number of errors are emitted per second, "+
		"the remaining errors are suppressed. Zero values disable the rate limit")
	warnsPerSecondLimit = flag.Int("loggerWarnsPerSecondLimit", 0, "Per-second limit on the number of WARN messages. If more than the given number of warns are emitted per second, "+
		"then the remaining warns are suppressed. Zero values disable the rate limit")
)

// Init initializes the logger.
//
// Init must be called after flag.Parse() or after the logger flags are set via flag.Set().
//
// There is no need in calling Init from tests.
func Init() {
	setLoggerLevel()
	setLoggerFormat()
	setLoggerOutput()
	initOnce.Do(func() {
		go logLimiterCleaner()
	})
}

var initOnce sync.Once

func setLoggerOutput() {
	switch *loggerOutput {
	case "stderr":
		SetOutput(os.Stderr)
	case "stdout":
		SetOutput(os.Stdout)
	default:
		// We cannot use logger.Panicf here, since the logger isn't initialized yet.
		panic(fmt.Errorf("FATAL: unsupported `-loggerOutput` value: %q; supported values are: stderr, stdout", *loggerOutput))
	}
}

// SetOutput sets the output for the logs.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
}

var output io.Writer = os.Stderr

// Infof logs info message.
func Infof(format string, args ...any) {
	logLevelf(levelInfo, 1, format, args...)
}

// Warnf logs warn message.
func Warnf(format string, args ...any) {
	logLevelf(levelWarn, 1, format, args...)
}

// WarnfSkipframes logs warn message and skips the given number of frames for the caller.
func WarnfSkipframes(skipframes int, format string, args ...any) {
	logLevelf(levelWarn, skipframes+1, format, args...)
}

// Errorf logs error message.
func Errorf(format string, args ...any) {
	logLevelf(levelError, 1, format, args...)
}

// ErrorfSkipframes logs error message and skips the given number of frames for the caller.
func ErrorfSkipframes(skipframes int, format string, args ...any) {
	logLevelf(levelError, skipframes+1, format, args...)
}

// Fatalf logs fatal message and terminates the app.
func Fatalf(format string, args ...any) {
	logLevelf(levelFatal, 1, format, args...)
}

// Panicf logs panic message and panics.
func Panicf(format string, args ...any) {
	logLevelf(levelPanic, 1, format, args...)
}

func logLevelf(level logLevel, skipframes int, format string, args ...any) {
	if level < minLogLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if !limiter.allow(level) {
		return
	}
	logMessage(level, msg, skipframes+2)
}

var limiter = &logLimiter{}

type logLimiter struct {
	errors atomic.Uint64
	warns  atomic.Uint64
}

func (ll *logLimiter) reset() {
	ll.errors.Store(0)
	ll.warns.Store(0)
}

func (ll *logLimiter) allow(level logLevel) bool {
	switch level {
	case levelError:
		limit := uint64(*errorsPerSecondLimit)
		return limit == 0 || ll.errors.Add(1) <= limit
	case levelWarn:
		limit := uint64(*warnsPerSecondLimit)
		return limit == 0 || ll.warns.Add(1) <= limit
	default:
		return true
	}
}

func logLimiterCleaner() {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for range t.C {
		limiter.reset()
	}
}

func logMessage(level logLevel, msg string, skipframes int) {
	_, file, line, ok := runtime.Caller(skipframes)
	if !ok {
		file = "???"
		line = 0
	}
	if n := strings.Index(file, "/bson/"); n >= 0 {
		// Strip /bson/ prefix
		file = file[n+len("/bson/"):]
	}
	for len(msg) > 0 && msg[len(msg)-1] == '\n' {
		msg = msg[:len(msg)-1]
	}

	var timestamp string
	if !*disableTimestamps {
		timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000Z0700")
	}
	location := fmt.Sprintf("%s:%d", file, line)

	bb := linePool.Get()
	bb.B = formatter.appendLine(bb.B, timestamp, level, location, msg)

	// Serialize writes to log.
	mu.Lock()
	_, _ = output.Write(bb.B)
	mu.Unlock()

	linePool.Put(bb)

	switch level {
	case levelPanic:
		panic(errors.New(msg))
	case levelFatal:
		os.Exit(-1)
	}
}

var linePool bytesutil.ByteBufferPool

var mu sync.Mutex

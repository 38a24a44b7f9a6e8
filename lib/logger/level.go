package logger

import (
	"flag"
	"fmt"
	"strings"
)

var loggerLevel = flag.String("loggerLevel", "INFO", "Minimum level of messages to log. Possible values: INFO, WARN, ERROR, FATAL, PANIC")

func setLoggerLevel() {
	lvl, ok := parseLevel(*loggerLevel)
	if !ok {
		// We cannot use logger.Panicf here, since the logger isn't initialized yet.
		panic(fmt.Errorf("FATAL: unsupported `-loggerLevel` value: %q; supported values are: INFO, WARN, ERROR, FATAL, PANIC", *loggerLevel))
	}
	minLogLevel = lvl
}

func parseLevel(s string) (logLevel, bool) {
	s = strings.ToLower(s)
	for i, name := range logLevelNames {
		if name == s {
			return logLevel(i), true
		}
	}
	return 0, false
}

var minLogLevel = levelInfo

type logLevel uint8

const (
	levelInfo logLevel = iota
	levelWarn
	levelError
	levelFatal
	levelPanic

	levelCount
)

var logLevelNames = [levelCount]string{
	"info",
	"warn",
	"error",
	"fatal",
	"panic",
}

func (lvl logLevel) String() string {
	if lvl >= levelCount {
		Panicf("BUG: unknown logLevel=%d", lvl)
	}
	return logLevelNames[lvl]
}

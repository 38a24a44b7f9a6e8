package logger

import (
	"flag"
	"fmt"

	"github.com/valyala/quicktemplate"
)

var loggerFormat = flag.String("loggerFormat", "default", "Format for logs. Possible values: default, json")

func setLoggerFormat() {
	f, ok := logFormatters[*loggerFormat]
	if !ok {
		// We cannot use logger.Panicf here, since the logger isn't initialized yet.
		panic(fmt.Errorf("FATAL: unsupported `-loggerFormat` value: %q; supported values are: default, json", *loggerFormat))
	}
	formatter = f
}

var formatter = formatterDefault

// logFormatter determines the layout of a single log line.
type logFormatter int

const (
	formatterDefault logFormatter = iota
	formatterJSON
)

var logFormatters = map[string]logFormatter{
	"default": formatterDefault,
	"json":    formatterJSON,
}

// appendLine appends the log line for msg to dst.
//
// timestamp is omitted if it is empty.
func (f logFormatter) appendLine(dst []byte, timestamp string, level logLevel, location, msg string) []byte {
	if f == formatterJSON {
		dst = append(dst, '{')
		if timestamp != "" {
			dst = appendJSONField(dst, "ts", timestamp)
			dst = append(dst, ',')
		}
		dst = appendJSONField(dst, "level", level.String())
		dst = append(dst, ',')
		dst = appendJSONField(dst, "caller", location)
		dst = append(dst, ',')
		dst = appendJSONField(dst, "msg", msg)
		return append(dst, "}\n"...)
	}

	if timestamp != "" {
		dst = append(dst, timestamp...)
		dst = append(dst, '\t')
	}
	dst = append(dst, level.String()...)
	dst = append(dst, '\t')
	dst = append(dst, location...)
	dst = append(dst, '\t')
	dst = append(dst, msg...)
	return append(dst, '\n')
}

func appendJSONField(dst []byte, name, value string) []byte {
	dst = quicktemplate.AppendJSONString(dst, name, true)
	dst = append(dst, ':')
	return quicktemplate.AppendJSONString(dst, value, true)
}

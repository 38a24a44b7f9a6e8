package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/valyala/fastjson"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()

	var bb bytes.Buffer
	SetOutput(&bb)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		formatter = formatterDefault
		minLogLevel = levelInfo
	})
	return &bb
}

func TestLogDefaultFormat(t *testing.T) {
	bb := captureOutput(t)

	Infof("foo %d", 42)
	Warnf("bar\n")

	lines := strings.Split(strings.TrimSpace(bb.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("unexpected number of lines; got %d; want 2; output:\n%s", len(lines), bb.String())
	}
	f := func(line, level, msg string) {
		t.Helper()

		fields := strings.Split(line, "\t")
		if len(fields) != 4 {
			t.Fatalf("unexpected number of fields in %q; got %d; want 4", line, len(fields))
		}
		if fields[1] != level {
			t.Fatalf("unexpected level; got %q; want %q", fields[1], level)
		}
		if !strings.Contains(fields[2], "logger_test.go:") {
			t.Fatalf("unexpected caller: %q", fields[2])
		}
		if fields[3] != msg {
			t.Fatalf("unexpected message; got %q; want %q", fields[3], msg)
		}
	}
	f(lines[0], "info", "foo 42")
	f(lines[1], "warn", "bar")
}

func TestLogJSONFormat(t *testing.T) {
	bb := captureOutput(t)
	formatter = formatterJSON

	Errorf("quote %q", `a"b`)

	v, err := fastjson.Parse(bb.String())
	if err != nil {
		t.Fatalf("cannot parse JSON log line %q: %s", bb.String(), err)
	}
	if level := string(v.GetStringBytes("level")); level != "error" {
		t.Fatalf("unexpected level; got %q; want %q", level, "error")
	}
	if msg := string(v.GetStringBytes("msg")); msg != `quote "a\"b"` {
		t.Fatalf("unexpected msg; got %q", msg)
	}
	if caller := string(v.GetStringBytes("caller")); !strings.Contains(caller, "logger_test.go:") {
		t.Fatalf("unexpected caller: %q", caller)
	}
}

func TestLogLevelFilter(t *testing.T) {
	bb := captureOutput(t)

	lvl, ok := parseLevel("ERROR")
	if !ok {
		t.Fatalf("cannot parse ERROR level")
	}
	minLogLevel = lvl
	Infof("skipped")
	Warnf("skipped")
	Errorf("logged")
	if n := strings.Count(bb.String(), "\n"); n != 1 {
		t.Fatalf("unexpected number of logged lines; got %d; want 1; output:\n%s", n, bb.String())
	}
	if _, ok := parseLevel("DEBUG"); ok {
		t.Fatalf("expecting DEBUG level to be unsupported")
	}
}

func TestPanicf(t *testing.T) {
	_ = captureOutput(t)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expecting panic")
		}
		if err, ok := r.(error); !ok || err.Error() != "BUG: foo" {
			t.Fatalf("unexpected panic value: %v", r)
		}
	}()
	Panicf("BUG: %s", "foo")
}

func TestLogThrottler(t *testing.T) {
	bb := captureOutput(t)

	lt := WithThrottler("test", time.Hour)
	if WithThrottler("test", time.Minute) != lt {
		t.Fatalf("expecting the same throttler for the same name")
	}
	for i := 0; i < 10; i++ {
		lt.Errorf("message %d", i)
	}
	if n := strings.Count(bb.String(), "\n"); n != 1 {
		t.Fatalf("unexpected number of logged lines; got %d; want 1; output:\n%s", n, bb.String())
	}
	if !strings.Contains(bb.String(), "message 0") {
		t.Fatalf("the first message must be logged; output:\n%s", bb.String())
	}
	if lt.suppressed.Load() != 9 {
		t.Fatalf("unexpected number of suppressed messages; got %d; want 9", lt.suppressed.Load())
	}
}

func TestFormatterAppendLine(t *testing.T) {
	f := func(lf logFormatter, timestamp, resultExpected string) {
		t.Helper()

		result := lf.appendLine([]byte("prefix "), timestamp, levelWarn, "app/main.go:12", `say "hi"`)
		if string(result) != resultExpected {
			t.Fatalf("unexpected line\ngot\n%q\nwant\n%q", result, resultExpected)
		}
	}

	f(formatterDefault, "", "prefix warn\tapp/main.go:12\tsay \"hi\"\n")
	f(formatterDefault, "2024-01-02T03:04:05.000Z", "prefix 2024-01-02T03:04:05.000Z\twarn\tapp/main.go:12\tsay \"hi\"\n")
	f(formatterJSON, "", `prefix {"level":"warn","caller":"app/main.go:12","msg":"say \"hi\""}`+"\n")
	f(formatterJSON, "2024-01-02T03:04:05.000Z", `prefix {"ts":"2024-01-02T03:04:05.000Z","level":"warn","caller":"app/main.go:12","msg":"say \"hi\""}`+"\n")
}

package bytesutil

import (
	"testing"
)

func TestItoa(t *testing.T) {
	f := func(n int, resultExpected string) {
		t.Helper()
		for i := 0; i < 5; i++ {
			result := Itoa(n)
			if result != resultExpected {
				t.Fatalf("unexpected result for Itoa(%d); got %q; want %q", n, result, resultExpected)
			}
			b := AppendItoa([]byte("x"), n)
			if string(b) != "x"+resultExpected {
				t.Fatalf("unexpected result for AppendItoa(%d); got %q; want %q", n, b, "x"+resultExpected)
			}
		}
	}
	f(0, "0")
	f(1, "1")
	f(-123, "-123")
	f(343432, "343432")
	f(1023, "1023")
	f(1024, "1024")
}

package long

import (
	"errors"
	"math"
	"testing"

	"github.com/valyala/fastjson"
	"pgregory.net/rapid"
)

func TestFromBits(t *testing.T) {
	f := func(low, high int32, unsigned bool, sExpected string) {
		t.Helper()

		l := FromBits(low, high, unsigned)
		if s := l.String(); s != sExpected {
			t.Fatalf("unexpected string for FromBits(%d, %d, %v); got %q; want %q", low, high, unsigned, s, sExpected)
		}
		if l.Low() != low || l.High() != high {
			t.Fatalf("unexpected halves; got (%d, %d); want (%d, %d)", l.Low(), l.High(), low, high)
		}
		if l.Unsigned() != unsigned {
			t.Fatalf("unexpected signedness; got %v; want %v", l.Unsigned(), unsigned)
		}
	}

	f(0, 0, false, "0")
	f(1, 0, false, "1")
	f(-1, -1, false, "-1")
	f(-1, -1, true, "18446744073709551615")
	f(0, 1, false, "4294967296")
	f(-1, 0x7fffffff, false, "9223372036854775807")
	f(0, math.MinInt32, false, "-9223372036854775808")
	f(0, math.MinInt32, true, "9223372036854775808")
}

func TestFromNumber(t *testing.T) {
	f := func(v float64, unsigned bool, resultExpected Long) {
		t.Helper()

		result := FromNumber(v, unsigned)
		if result != resultExpected {
			t.Fatalf("unexpected FromNumber(%v, %v); got %s (unsigned=%v); want %s (unsigned=%v)",
				v, unsigned, result, result.Unsigned(), resultExpected, resultExpected.Unsigned())
		}
	}

	f(0, false, Zero)
	f(1.9, false, One)
	f(-1.9, false, NegOne)
	f(math.NaN(), false, Zero)
	f(math.Inf(1), false, Zero)
	f(math.Inf(-1), false, Zero)
	f(math.NaN(), true, UZero)
	f(math.Inf(1), true, UZero)
	f(1e30, false, MaxValue)
	f(-1e30, false, MinValue)
	f(1e30, true, MaxUnsignedValue)
	f(-5, true, UZero)
	f(1<<53, false, FromInt64(1<<53))
	f(-(1 << 53), false, FromInt64(-(1 << 53)))
}

func TestFromString(t *testing.T) {
	f := func(s string, radix int, unsigned bool, resultExpected Long) {
		t.Helper()

		result, err := FromString(s, radix, unsigned)
		if err != nil {
			t.Fatalf("unexpected error for %q: %s", s, err)
		}
		if result != resultExpected {
			t.Fatalf("unexpected FromString(%q, %d, %v); got %s; want %s", s, radix, unsigned, result, resultExpected)
		}
	}

	f("0", 10, false, Zero)
	f("123", 10, false, FromInt64(123))
	f("-123", 10, false, FromInt64(-123))
	f("9223372036854775807", 10, false, MaxValue)
	f("-9223372036854775808", 10, false, MinValue)
	f("18446744073709551615", 10, true, MaxUnsignedValue)
	f("ff", 16, false, FromInt64(255))
	f("FF", 16, false, FromInt64(255))
	f("-zz", 36, false, FromInt64(-1295))
	f("1010", 2, true, FromUint64(10))
	f("NaN", 10, false, Zero)
	f("Infinity", 10, true, UZero)

	// overflow wraps around
	f("9223372036854775808", 10, false, MinValue)
}

func TestFromStringFailure(t *testing.T) {
	f := func(s string, radix int) {
		t.Helper()

		if _, err := FromString(s, radix, false); err == nil {
			t.Fatalf("expecting non-nil error for FromString(%q, %d)", s, radix)
		}
	}

	f("", 10)
	f("-", 10)
	f("--1", 10)
	f("1-2", 10)
	f("12a", 10)
	f("2", 2)
	f("1", 1)
	f("1", 37)
	f("1.5", 10)
}

func TestToString(t *testing.T) {
	f := func(l Long, radix int, sExpected string) {
		t.Helper()

		if s := l.ToString(radix); s != sExpected {
			t.Fatalf("unexpected ToString(%d); got %q; want %q", radix, s, sExpected)
		}
		lNew, err := FromString(sExpected, radix, l.Unsigned())
		if err != nil {
			t.Fatalf("cannot parse %q: %s", sExpected, err)
		}
		if lNew != l {
			t.Fatalf("unexpected value after round trip; got %s; want %s", lNew, l)
		}
	}

	f(Zero, 10, "0")
	f(MinValue, 10, "-9223372036854775808")
	f(MinValue, 16, "-8000000000000000")
	f(MaxUnsignedValue, 16, "ffffffffffffffff")
	f(MaxUnsignedValue, 2, "1111111111111111111111111111111111111111111111111111111111111111")
	f(FromInt64(-255), 16, "-ff")
	f(FromInt64(1295), 36, "zz")
}

func TestDivideModulo(t *testing.T) {
	f := func(a, b Long, qExpected, rExpected Long) {
		t.Helper()

		q, err := a.Divide(b)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if q != qExpected {
			t.Fatalf("unexpected %s / %s; got %s; want %s", a, b, q, qExpected)
		}
		r, err := a.Modulo(b)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if r != rExpected {
			t.Fatalf("unexpected %s %% %s; got %s; want %s", a, b, r, rExpected)
		}
	}

	f(FromInt64(7), FromInt64(2), FromInt64(3), FromInt64(1))
	f(FromInt64(-7), FromInt64(2), FromInt64(-3), FromInt64(-1))
	f(FromInt64(7), FromInt64(-2), FromInt64(-3), FromInt64(1))
	f(MinValue, NegOne, MinValue, Zero)
	f(MinValue, One, MinValue, Zero)
	f(MaxUnsignedValue, FromUint64(2), FromUint64(math.MaxUint64/2), UOne)

	// signed dividend, unsigned divisor: the division is signed
	f(FromInt64(-8), FromUint64(2), FromInt64(-4), Zero)

	if _, err := One.Divide(Zero); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("unexpected error for division by zero: %v", err)
	}
	if _, err := One.Modulo(UZero); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("unexpected error for modulo by zero: %v", err)
	}
}

func TestShifts(t *testing.T) {
	f := func(got, want Long) {
		t.Helper()

		if got != want {
			t.Fatalf("unexpected result; got %s (%x); want %s (%x)", got, got.Bits(), want, want.Bits())
		}
	}

	f(One.ShiftLeft(63), MinValue)
	f(One.ShiftLeft(64), One)
	f(One.ShiftLeft(65), FromInt64(2))
	f(MinValue.ShiftRight(63), NegOne)
	f(MinValue.ShiftRightUnsigned(63), One)
	f(MaxUnsignedValue.ShiftRight(60), MaxUnsignedValue)
	f(MaxUnsignedValue.ShiftRightUnsigned(60), FromUint64(15))
	f(FromInt64(-16).ShiftRight(2), FromInt64(-4))
	f(FromInt64(16).ShiftRight(0), FromInt64(16))
}

func TestCompareEquals(t *testing.T) {
	f := func(a, b Long, cmpExpected int, eqExpected bool) {
		t.Helper()

		if cmp := a.Compare(b); cmp != cmpExpected {
			t.Fatalf("unexpected Compare(%s, %s); got %d; want %d", a, b, cmp, cmpExpected)
		}
		if cmp := b.Compare(a); cmp != -cmpExpected {
			t.Fatalf("unexpected Compare(%s, %s); got %d; want %d", b, a, cmp, -cmpExpected)
		}
		if eq := a.Equals(b); eq != eqExpected {
			t.Fatalf("unexpected Equals(%s, %s); got %v; want %v", a, b, eq, eqExpected)
		}
	}

	f(Zero, Zero, 0, true)
	f(Zero, UZero, 0, true)
	f(One, Zero, 1, false)
	f(NegOne, Zero, -1, false)
	f(MinValue, MaxValue, -1, false)
	f(NegOne, MaxUnsignedValue, -1, false)
	f(MaxValue, MaxUnsignedValue, -1, false)
	f(FromInt64(5), FromUint64(5), 0, true)
	f(FromInt64(5), FromUint64(6), -1, false)
	f(FromUint64(1<<63), FromUint64(1), 1, false)

	if !One.GreaterThan(Zero) || !Zero.LessThan(One) || !One.GreaterThanOrEqual(One) || !One.LessThanOrEqual(One) {
		t.Fatalf("unexpected comparison results")
	}
	if !One.NotEquals(Zero) {
		t.Fatalf("unexpected NotEquals result")
	}
}

func TestPredicates(t *testing.T) {
	if !Zero.IsZero() || One.IsZero() {
		t.Fatalf("unexpected IsZero")
	}
	if !NegOne.IsNegative() || MaxUnsignedValue.IsNegative() || !MaxUnsignedValue.IsPositive() {
		t.Fatalf("unexpected IsNegative/IsPositive")
	}
	if !One.IsOdd() || One.IsEven() || !Zero.IsEven() {
		t.Fatalf("unexpected IsOdd/IsEven")
	}
	if !FromInt64(1<<53-1).IsSafeInteger() || FromInt64(1<<53).IsSafeInteger() || !FromInt64(-(1<<53 - 1)).IsSafeInteger() {
		t.Fatalf("unexpected IsSafeInteger")
	}
	if MaxUnsignedValue.ToSigned() != NegOne || NegOne.ToUnsigned() != MaxUnsignedValue {
		t.Fatalf("unexpected signedness conversion")
	}
	if FromInt(-1, true) != FromUint64(math.MaxUint32) || FromInt(-1, false) != NegOne {
		t.Fatalf("unexpected FromInt")
	}
}

func TestNumBitsAbs(t *testing.T) {
	f := func(l Long, nExpected int) {
		t.Helper()

		if n := l.NumBitsAbs(); n != nExpected {
			t.Fatalf("unexpected NumBitsAbs(%s); got %d; want %d", l, n, nExpected)
		}
	}

	f(Zero, 1)
	f(One, 1)
	f(FromInt64(255), 8)
	f(FromInt64(-255), 8)
	f(FromInt64(1<<32), 33)
	f(MaxValue, 63)
	f(MinValue, 64)
	f(MaxUnsignedValue, 64)
}

func TestToNumber(t *testing.T) {
	f := func(l Long, vExpected float64) {
		t.Helper()

		if v := l.ToNumber(); v != vExpected {
			t.Fatalf("unexpected ToNumber(%s); got %v; want %v", l, v, vExpected)
		}
	}

	f(Zero, 0)
	f(NegOne, -1)
	f(MaxUnsignedValue, 18446744073709551615)
	f(FromInt64(1<<53+1), 1<<53)
	f(MinValue, -9223372036854775808)
}

func TestArithmeticMatchesNative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Int64().Draw(t, "a")
		b := rapid.Int64().Draw(t, "b")
		la := FromInt64(a)
		lb := FromInt64(b)

		if got := la.Add(lb).Int64(); got != a+b {
			t.Fatalf("%d + %d: got %d; want %d", a, b, got, a+b)
		}
		if got := la.Subtract(lb).Int64(); got != a-b {
			t.Fatalf("%d - %d: got %d; want %d", a, b, got, a-b)
		}
		if got := la.Multiply(lb).Int64(); got != a*b {
			t.Fatalf("%d * %d: got %d; want %d", a, b, got, a*b)
		}
		if got := la.Negate().Int64(); got != -a {
			t.Fatalf("-%d: got %d; want %d", a, got, -a)
		}
		if got := la.Xor(lb).Int64(); got != a^b {
			t.Fatalf("%d ^ %d: got %d; want %d", a, b, got, a^b)
		}
		if got := la.And(lb).Or(la.Not()).Int64(); got != (a&b)|^a {
			t.Fatalf("(%d & %d) | ^%d: got %d; want %d", a, b, a, got, (a&b)|^a)
		}
		if b != 0 {
			q, err := la.Divide(lb)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if q.Int64() != a/b {
				t.Fatalf("%d / %d: got %d; want %d", a, b, q.Int64(), a/b)
			}
			r, err := la.Modulo(lb)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if r.Int64() != a%b {
				t.Fatalf("%d %% %d: got %d; want %d", a, b, r.Int64(), a%b)
			}
		}

		wantCmp := 0
		if a < b {
			wantCmp = -1
		} else if a > b {
			wantCmp = 1
		}
		if cmp := la.Compare(lb); cmp != wantCmp {
			t.Fatalf("Compare(%d, %d): got %d; want %d", a, b, cmp, wantCmp)
		}

		s := la.String()
		lNew, err := FromString(s, 10, false)
		if err != nil {
			t.Fatalf("cannot parse %q: %s", s, err)
		}
		if lNew != la {
			t.Fatalf("unexpected round trip for %d; got %s", a, lNew)
		}
		if FromBits(la.Low(), la.High(), false) != la {
			t.Fatalf("unexpected FromBits round trip for %d", a)
		}
	})
}

func TestUnsignedArithmeticMatchesNative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Uint64().Draw(t, "a")
		b := rapid.Uint64().Draw(t, "b")
		la := FromUint64(a)
		lb := FromUint64(b)

		if got := la.Add(lb).Uint64(); got != a+b {
			t.Fatalf("%d + %d: got %d; want %d", a, b, got, a+b)
		}
		if got := la.Multiply(lb).Uint64(); got != a*b {
			t.Fatalf("%d * %d: got %d; want %d", a, b, got, a*b)
		}
		if b != 0 {
			q, _ := la.Divide(lb)
			if q.Uint64() != a/b {
				t.Fatalf("%d / %d: got %d; want %d", a, b, q.Uint64(), a/b)
			}
		}
		wantCmp := 0
		if a < b {
			wantCmp = -1
		} else if a > b {
			wantCmp = 1
		}
		if cmp := la.Compare(lb); cmp != wantCmp {
			t.Fatalf("Compare(%d, %d): got %d; want %d", a, b, cmp, wantCmp)
		}
		n := uint(rapid.IntRange(0, 200).Draw(t, "n"))
		if got := la.ShiftRightUnsigned(n).Uint64(); got != a>>(n%64) {
			t.Fatalf("%d >>> %d: got %d; want %d", a, n, got, a>>(n%64))
		}
	})
}

func TestExtendedJSON(t *testing.T) {
	f := func(l Long, canonicalExpected, relaxedExpected string) {
		t.Helper()

		canonical := l.ToExtendedJSON(nil, false)
		if string(canonical) != canonicalExpected {
			t.Fatalf("unexpected canonical form; got %s; want %s", canonical, canonicalExpected)
		}
		relaxed := l.ToExtendedJSON(nil, true)
		if string(relaxed) != relaxedExpected {
			t.Fatalf("unexpected relaxed form; got %s; want %s", relaxed, relaxedExpected)
		}

		v := fastjson.MustParse(canonicalExpected)
		lNew, err := FromExtendedJSON(v)
		if err != nil {
			t.Fatalf("cannot parse %s: %s", canonicalExpected, err)
		}
		if !lNew.Equals(l) {
			t.Fatalf("unexpected value parsed from %s; got %s; want %s", canonicalExpected, lNew, l)
		}
	}

	f(Zero, `{"$numberLong":"0"}`, `0`)
	f(FromInt64(-42), `{"$numberLong":"-42"}`, `-42`)
	f(MaxValue, `{"$numberLong":"9223372036854775807"}`, `9223372036854776000`)

	l, err := FromExtendedJSON(fastjson.MustParse(`12345`))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if l != FromInt64(12345) {
		t.Fatalf("unexpected value from relaxed form: %s", l)
	}

	for _, s := range []string{`"1"`, `{}`, `{"$numberLong":1}`, `{"$numberLong":"x"}`} {
		if _, err := FromExtendedJSON(fastjson.MustParse(s)); err == nil {
			t.Fatalf("expecting non-nil error for %s", s)
		}
	}
}

package flagutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NewBytes returns new `bytes` flag value with the given defaultValue.
//
// The returned value may be registered via flag.Var or passed to command-line parsers accepting flag.Value.
func NewBytes(defaultValue int) *Bytes {
	return &Bytes{
		N:           defaultValue,
		valueString: fmt.Sprintf("%d", defaultValue),
	}
}

// Bytes is a flag for holding size in bytes.
//
// It supports the following optional suffixes for values: KB, MB, GB, TB, KiB, MiB, GiB, TiB.
type Bytes struct {
	// N contains parsed value for the given flag.
	N int

	valueString string
}

// String implements flag.Value interface
func (b *Bytes) String() string {
	return b.valueString
}

// Set implements flag.Value interface
func (b *Bytes) Set(value string) error {
	value = normalizeBytesString(value)
	n, err := ParseBytes(value)
	if err != nil {
		return err
	}
	b.N = n
	b.valueString = value
	return nil
}

// IntMax returns b.N clamped to [minValue, maxValue].
func (b *Bytes) IntMax(minValue, maxValue int) int {
	return min(max(b.N, minValue), maxValue)
}

// Binary suffixes go first, since they share the last byte with decimal suffixes.
var bytesSuffixes = []struct {
	suffix     string
	multiplier float64
}{
	{"KiB", 1 << 10},
	{"MiB", 1 << 20},
	{"GiB", 1 << 30},
	{"TiB", 1 << 40},
	{"KB", 1e3},
	{"MB", 1e6},
	{"GB", 1e9},
	{"TB", 1e12},
}

// ParseBytes parses size s with optional suffix.
//
// An empty s is parsed as 0.
func ParseBytes(s string) (int, error) {
	s = normalizeBytesString(s)
	if s == "" {
		return 0, nil
	}
	multiplier := 1.0
	for _, bs := range bytesSuffixes {
		if strings.HasSuffix(s, bs.suffix) {
			s = s[:len(s)-len(bs.suffix)]
			multiplier = bs.multiplier
			break
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse size %q: %w", s, err)
	}
	f *= multiplier
	if math.IsNaN(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("size %q is out of range", s)
	}
	return int(f), nil
}

func normalizeBytesString(s string) string {
	s = strings.ToUpper(s)
	return strings.ReplaceAll(s, "I", "i")
}

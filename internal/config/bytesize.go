package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// ByteSize is a size in bytes that parses suffixed values such as "300KB"
// or "1.5MB". Suffixes are binary: 1KB is 1024 bytes.
type ByteSize int64

var _ pflag.Value = (*ByteSize)(nil)

var byteUnits = []struct {
	suffix string
	mult   float64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"G", 1 << 30},
	{"M", 1 << 20},
	{"K", 1 << 10},
	{"B", 1},
}

// ParseByteSize parses a byte count with an optional unit suffix.
func ParseByteSize(s string) (ByteSize, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "" {
		return 0, fmt.Errorf("empty size")
	}

	mult := 1.0
	for _, u := range byteUnits {
		if strings.HasSuffix(v, u.suffix) {
			v = strings.TrimSpace(strings.TrimSuffix(v, u.suffix))
			mult = u.mult
			break
		}
	}

	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n < 0 || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	size := math.Round(n * mult)
	if size >= math.MaxInt64 {
		return 0, fmt.Errorf("invalid size %q (too large)", s)
	}
	return ByteSize(size), nil
}

// String formats the size with the largest unit that divides it evenly.
func (b ByteSize) String() string {
	switch {
	case b == 0:
		return "0"
	case b%(1<<20) == 0:
		return fmt.Sprintf("%dMB", b>>20)
	case b%(1<<10) == 0:
		return fmt.Sprintf("%dKB", b>>10)
	default:
		return strconv.FormatInt(int64(b), 10)
	}
}

// Set implements pflag.Value.
func (b *ByteSize) Set(s string) error {
	v, err := ParseByteSize(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Type implements pflag.Value.
func (b *ByteSize) Type() string {
	return "size"
}

package dyntable

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is a panel dimension: either a fixed number of terminal cells or a
// percentage of the available space.
type Size struct {
	Value   int
	Percent bool
}

// Cells returns a fixed size of n terminal cells.
func Cells(n int) Size { return Size{Value: n} }

// Percent returns a size of p percent of the available space.
func Percent(p int) Size { return Size{Value: p, Percent: true} }

// ParseSize parses "40" (cells) or "100%" (percentage).
func ParseSize(s string) (Size, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Size{}, fmt.Errorf("empty size")
	}
	pct := strings.HasSuffix(s, "%")
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(s, "%")))
	if err != nil {
		return Size{}, fmt.Errorf("invalid size %q: expected a number of cells or a percentage like 50%%", s)
	}
	if n <= 0 {
		return Size{}, fmt.Errorf("invalid size %q: must be positive", s)
	}
	if pct && n > 100 {
		return Size{}, fmt.Errorf("invalid size %q: percentage cannot exceed 100%%", s)
	}
	return Size{Value: n, Percent: pct}, nil
}

// IsZero reports whether the size is unset.
func (s Size) IsZero() bool { return s.Value <= 0 }

// Resolve converts the size into cells against total available cells. Fixed
// sizes are clamped to total when total is known (positive). The result is at
// least 1.
func (s Size) Resolve(total int) int {
	n := s.Value
	if s.Percent {
		n = total * s.Value / 100
	}
	if total > 0 && n > total {
		n = total
	}
	return max(n, 1)
}

// String implements pflag.Value.
func (s Size) String() string {
	if s.IsZero() {
		return ""
	}
	if s.Percent {
		return strconv.Itoa(s.Value) + "%"
	}
	return strconv.Itoa(s.Value)
}

// Set implements pflag.Value.
func (s *Size) Set(v string) error {
	parsed, err := ParseSize(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Type implements pflag.Value.
func (s *Size) Type() string { return "size" }

// Package fraction converts between decimal treasury prices and the
// bond-market fractional notation "<whole>-<32nds><eighth>", where the final
// character encodes eighths of a 32nd and '+' stands for four eighths
// (a quarter of a 32nd, 1/128).
package fraction

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Decode parses a fractional price such as "99-165" or "100-00+" into its
// decimal value.
func Decode(s string) (float64, error) {
	whole, frac, ok := strings.Cut(s, "-")
	if !ok {
		return 0, fmt.Errorf("fraction %q: missing '-'", s)
	}
	if len(frac) != 3 {
		return 0, fmt.Errorf("fraction %q: want 3 fractional chars, got %d", s, len(frac))
	}

	w, err := strconv.Atoi(whole)
	if err != nil {
		return 0, fmt.Errorf("fraction %q: whole part: %w", s, err)
	}

	thirtySeconds, err := strconv.Atoi(frac[:2])
	if err != nil {
		return 0, fmt.Errorf("fraction %q: 32nds: %w", s, err)
	}
	if thirtySeconds > 31 {
		return 0, fmt.Errorf("fraction %q: 32nds out of range", s)
	}

	eighthChar := frac[2]
	if eighthChar == '+' {
		eighthChar = '4'
	}
	eighth := int(eighthChar - '0')
	if eighth < 0 || eighth > 7 {
		return 0, fmt.Errorf("fraction %q: bad eighth code %q", s, frac[2])
	}

	return float64(w) + float64(thirtySeconds)/32.0 + float64(eighth)/256.0, nil
}

// Encode renders a decimal price in fractional notation. Prices are truncated
// to 1/256 granularity; an eighth code of 4 is rendered as '+'.
func Encode(price float64) string {
	whole := int(math.Floor(price))
	ticks := int(math.Floor((price - float64(whole)) * 256.0))
	thirtySeconds := ticks / 8
	eighth := ticks % 8

	e := strconv.Itoa(eighth)
	if eighth == 4 {
		e = "+"
	}
	return fmt.Sprintf("%d-%02d%s", whole, thirtySeconds, e)
}

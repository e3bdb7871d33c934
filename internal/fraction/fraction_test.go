package fraction

import (
	"math"
	"testing"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"99-000", 99.0},
		{"99-160", 99.5},
		{"100-00+", 100.0 + 4.0/256.0},
		{"99-317", 99.0 + 31.0/32.0 + 7.0/256.0},
		{"0-001", 1.0 / 256.0},
	}
	for _, c := range cases {
		got, err := Decode(c.in)
		if err != nil {
			t.Fatalf("Decode(%q): %v", c.in, err)
		}
		if math.Abs(got-c.want) > 1e-12 {
			t.Errorf("Decode(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, in := range []string{"99", "99-1", "99-16x", "99-40+", "xx-000"} {
		if _, err := Decode(in); err == nil {
			t.Errorf("Decode(%q): expected error", in)
		}
	}
}

func TestEncode(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{99.0, "99-000"},
		{99.5, "99-160"},
		{100.0 + 4.0/256.0, "100-00+"},
		{99.0 + 31.0/32.0 + 7.0/256.0, "99-317"},
	}
	for _, c := range cases {
		if got := Encode(c.in); got != c.want {
			t.Errorf("Encode(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

// Every representable price at 1/256 granularity must round-trip.
func TestRoundTrip(t *testing.T) {
	for ticks := 0; ticks < 3*256; ticks++ {
		price := 99.0 + float64(ticks)/256.0
		got, err := Decode(Encode(price))
		if err != nil {
			t.Fatalf("round trip %v: %v", price, err)
		}
		if math.Abs(got-price) > 1e-12 {
			t.Fatalf("round trip %v -> %q -> %v", price, Encode(price), got)
		}
	}
}

package probe

import (
	"math"
	"strconv"
	"strings"
)

// Rational is an exact num/den pair as ffprobe reports frame rates.
type Rational struct {
	Num int64
	Den int64
}

// Float64 returns Num/Den. Den is never zero for a parsed Rational.
func (r Rational) Float64() float64 {
	return float64(r.Num) / float64(r.Den)
}

func (r Rational) String() string {
	return strconv.FormatInt(r.Num, 10) + "/" + strconv.FormatInt(r.Den, 10)
}

// parseRational parses "<num>/<den>". "0/0", a zero denominator, or
// malformed text yields an absent value.
func parseRational(s string) Optional[Rational] {
	num, den, ok := splitPair(s, "/")
	if !ok || den == 0 {
		return None[Rational]()
	}
	return Some(Rational{Num: num, Den: den})
}

// parseAspect parses a "W:H" ratio such as "16:9". It is absent when the
// text is missing, malformed, or either component is zero.
func parseAspect(s string) Optional[float64] {
	w, h, ok := splitPair(s, ":")
	if !ok || w == 0 || h == 0 {
		return None[float64]()
	}
	return Some(float64(w) / float64(h))
}

func splitPair(s, sep string) (int64, int64, bool) {
	a, b, found := strings.Cut(strings.TrimSpace(s), sep)
	if !found {
		return 0, 0, false
	}
	x, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
	if err != nil {
		return 0, 0, false
	}
	y, err := strconv.ParseInt(strings.TrimSpace(b), 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return x, y, true
}

// finite wraps f as present unless it is NaN or infinite.
func finite(f float64) Optional[float64] {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return None[float64]()
	}
	return Some(f)
}

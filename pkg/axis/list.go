package axis

import (
	"strconv"
	"strings"
)

// ParseFloatList parses a comma separated list of numbers into out,
// filling slots left to right and leaving the remaining slots untouched,
// so callers must pre-seed out with their defaults. It returns the
// number of values parsed.
//
// A return of 0 means the list was empty or its first token was not a
// number; callers treat that as failure. A malformed later token ends
// the parse instead of failing it, keeping the values accepted so far.
// Partial overrides rely on this, so the asymmetry is contractual.
// Values beyond len(out) are silently ignored.
func ParseFloatList(s string, out []float64) int {
	n := 0
	for _, tok := range strings.Split(s, ",") {
		if n >= len(out) {
			break
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
		if err != nil {
			break
		}
		out[n] = v
		n++
	}
	return n
}

// ParseHomeList parses a comma separated list of numeric home switch
// values (0=none, 1=origin, 2=end-of-range) over the seed values in out,
// with the same prefix-fill contract as ParseFloatList. The second
// return is false when a parsed value is not exactly 0, 1 or 2.
func ParseHomeList(s string, out []HomeType) (int, bool) {
	tmp := make([]float64, len(out))
	for i, h := range out {
		tmp[i] = float64(h)
	}
	n := ParseFloatList(s, tmp)
	for i := 0; i < n; i++ {
		h, ok := HomeFromValue(tmp[i])
		if !ok {
			return i, false
		}
		out[i] = h
	}
	return n, true
}

package axis

import "testing"

func TestFromLetter(t *testing.T) {
	cases := []struct {
		ch   byte
		want Axis
		ok   bool
	}{
		{'X', X, true},
		{'x', X, true},
		{'Y', Y, true},
		{'Z', Z, true},
		{'E', E, true},
		{'a', A, true},
		{'B', B, true},
		{'C', C, true},
		{'Q', 0, false},
		{'_', 0, false},
		{' ', 0, false},
	}
	for _, tc := range cases {
		got, ok := FromLetter(tc.ch)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("FromLetter(%q) = %v,%v, want %v,%v", tc.ch, got, ok, tc.want, tc.ok)
		}
	}
}

func TestAxisString(t *testing.T) {
	for i := 0; i < NumAxes; i++ {
		if got := Axis(i).String(); got != string(Letters[i]) {
			t.Errorf("Axis(%d).String() = %q, want %q", i, got, string(Letters[i]))
		}
	}
}

func TestHomeFromValue(t *testing.T) {
	cases := []struct {
		v    float64
		want HomeType
		ok   bool
	}{
		{0, HomeNone, true},
		{1, HomeOrigin, true},
		{2, HomeEndRange, true},
		{3, 0, false},
		{-1, 0, false},
		{1.5, 0, false},
	}
	for _, tc := range cases {
		got, ok := HomeFromValue(tc.v)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("HomeFromValue(%v) = %v,%v, want %v,%v", tc.v, got, ok, tc.want, tc.ok)
		}
	}
}

func TestHomeFromName(t *testing.T) {
	for _, tc := range []struct {
		name string
		want HomeType
		ok   bool
	}{
		{"none", HomeNone, true},
		{"origin", HomeOrigin, true},
		{"end-of-range", HomeEndRange, true},
		{"Origin", HomeOrigin, true},
		{"middle", 0, false},
	} {
		got, ok := HomeFromName(tc.name)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("HomeFromName(%q) = %v,%v, want %v,%v", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestHomeTypeString(t *testing.T) {
	if HomeNone.String() != "none" || HomeOrigin.String() != "origin" || HomeEndRange.String() != "end-of-range" {
		t.Errorf("unexpected home type names: %v %v %v", HomeNone, HomeOrigin, HomeEndRange)
	}
}

// Package axis defines the fixed logical axis enumeration shared by the
// configuration front end and the execution engine, together with the
// prefix-fill list parser used for per-axis command line overrides.
package axis

import "strings"

// Axis identifies one logical machine axis. The enumeration order is the
// canonical order of every per-axis configuration array and of every
// comma separated axis list accepted on the command line.
type Axis int

const (
	X Axis = iota
	Y
	Z
	E
	A
	B
	C
)

// NumAxes is the number of logical axes. Every per-axis array carries
// exactly this many entries.
const NumAxes = 7

// Letters holds the axis letters in enumeration order.
const Letters = "XYZEABC"

func (a Axis) String() string {
	if a < 0 || int(a) >= NumAxes {
		return "?"
	}
	return Letters[a : a+1]
}

// FromLetter maps an axis letter (either case) to its Axis value.
func FromLetter(ch byte) (Axis, bool) {
	if ch >= 'a' && ch <= 'z' {
		ch -= 'a' - 'A'
	}
	for i := 0; i < NumAxes; i++ {
		if Letters[i] == ch {
			return Axis(i), true
		}
	}
	return 0, false
}

// HomeType describes the homing behavior of one axis.
type HomeType int

const (
	// HomeNone means the axis has no home switch.
	HomeNone HomeType = iota

	// HomeOrigin homes the axis toward its origin.
	HomeOrigin

	// HomeEndRange homes the axis toward the end of its travel range.
	HomeEndRange
)

func (h HomeType) String() string {
	switch h {
	case HomeNone:
		return "none"
	case HomeOrigin:
		return "origin"
	case HomeEndRange:
		return "end-of-range"
	default:
		return "unknown"
	}
}

// HomeFromValue narrows a numeric home switch value to a HomeType.
// Only the exact values 0, 1 and 2 are accepted.
func HomeFromValue(v float64) (HomeType, bool) {
	switch v {
	case 0:
		return HomeNone, true
	case 1:
		return HomeOrigin, true
	case 2:
		return HomeEndRange, true
	}
	return HomeNone, false
}

// HomeFromName maps a textual home switch name, any case, to its
// HomeType.
func HomeFromName(name string) (HomeType, bool) {
	switch strings.ToLower(name) {
	case "none":
		return HomeNone, true
	case "origin":
		return HomeOrigin, true
	case "end-of-range":
		return HomeEndRange, true
	}
	return HomeNone, false
}

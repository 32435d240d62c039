// Package machine defines the per-axis machine configuration shared by
// the ingress drivers and the execution engine.
package machine

import (
	"fmt"

	"machine-control-go/pkg/axis"
)

// Config describes the machine driven by the engine. It is assembled
// once at startup from compiled-in defaults, an optional hardware
// profile, and command-line overrides, and is read-only afterwards.
type Config struct {
	// Per-axis values in axis order X,Y,Z,E,A,B,C.
	StepsPerMM   [axis.NumAxes]float64
	MaxFeedrate  [axis.NumAxes]float64 // mm/s
	Acceleration [axis.NumAxes]float64 // mm/s^2; <= 0 means unlimited
	MoveRangeMM  [axis.NumAxes]float64 // < 0 means unbounded

	HomeSwitch [axis.NumAxes]axis.HomeType

	// ChannelLayout maps logical motor channels to physical connector
	// slots. Fixed by the hardware, carried for the engine.
	ChannelLayout string

	// AxisMapping names, per physical output channel, the logical axis
	// letter driving it, with '_' for an unused slot.
	AxisMapping string

	// SpeedFactor multiplies all feedrates. Always > 0.
	SpeedFactor float64

	// Execution-mode flags, semantics owned by the engine.
	DryRun      bool
	DebugPrint  bool
	Synchronous bool
}

// DefaultConfig returns the compiled-in defaults for the stock driver
// hardware. Callers get a fresh value each time; tests can start from a
// different hardware profile without touching package state.
func DefaultConfig() Config {
	return Config{
		StepsPerMM:   [axis.NumAxes]float64{160, 160, 160, 40, 1, 0, 0},
		MaxFeedrate:  [axis.NumAxes]float64{200, 200, 90, 10, 1, 0, 0},
		Acceleration: [axis.NumAxes]float64{4000, 4000, 1000, 10000, 1, 0, 0},
		MoveRangeMM:  [axis.NumAxes]float64{100, 100, 100, -1, -1, -1, -1},
		HomeSwitch: [axis.NumAxes]axis.HomeType{
			axis.HomeOrigin, axis.HomeOrigin, axis.HomeOrigin,
			axis.HomeNone, axis.HomeNone, axis.HomeNone, axis.HomeNone,
		},
		ChannelLayout: "23140",
		AxisMapping:   "XYZEA",
		SpeedFactor:   1.0,
	}
}

// SetSpeedFactor applies a speed multiplier. Zero or negative factors
// are rejected at the moment they are set.
func (c *Config) SetSpeedFactor(v float64) error {
	if v <= 0 {
		return fmt.Errorf("speed factor cannot be <= 0 (got %g)", v)
	}
	c.SpeedFactor = v
	return nil
}

// ValidateAxisMapping checks that a mapping string names each physical
// output channel with a known axis letter or '_' for an unused slot,
// no letter appearing twice, and no more channels than axes exist.
func ValidateAxisMapping(mapping string) error {
	if len(mapping) > axis.NumAxes {
		return fmt.Errorf("axis mapping %q: more than %d channels", mapping, axis.NumAxes)
	}
	var seen [axis.NumAxes]bool
	for i := 0; i < len(mapping); i++ {
		ch := mapping[i]
		if ch == '_' {
			continue
		}
		a, ok := axis.FromLetter(ch)
		if !ok {
			return fmt.Errorf("axis mapping %q: unknown axis letter %q in channel %d", mapping, string(ch), i)
		}
		if seen[a] {
			return fmt.Errorf("axis mapping %q: axis %s mapped twice", mapping, a)
		}
		seen[a] = true
	}
	return nil
}

// ValidateChannelLayout checks that a layout string assigns each motor
// channel a distinct connector digit.
func ValidateChannelLayout(layout string) error {
	var seen [10]bool
	for i := 0; i < len(layout); i++ {
		ch := layout[i]
		if ch < '0' || ch > '9' {
			return fmt.Errorf("channel layout %q: %q is not a connector digit", layout, string(ch))
		}
		d := ch - '0'
		if seen[d] {
			return fmt.Errorf("channel layout %q: connector %c assigned twice", layout, ch)
		}
		seen[d] = true
	}
	return nil
}

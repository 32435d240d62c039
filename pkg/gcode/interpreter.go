// Package gcode implements the stream interpreter that serves as the
// built-in execution engine. It tracks a virtual machine position and
// acknowledges every command; no hardware is driven.
package gcode

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"machine-control-go/pkg/axis"
	"machine-control-go/pkg/engine"
	"machine-control-go/pkg/errors"
	"machine-control-go/pkg/log"
	"machine-control-go/pkg/machine"
)

// defaultFeedrate is assumed until the stream sets one, in mm/s.
const defaultFeedrate = 25.0

// Interpreter is the simulation engine. One Interpreter serves any
// number of consecutive streams; machine state carries over between
// them the way a physical machine's position would.
type Interpreter struct {
	cfg *machine.Config
	log *log.Logger

	// GCode coordinate state.
	absCoords  bool                  // G90 (true) / G91 (false)
	absExtrude bool                  // M82 (true) / M83 (false)
	position   [axis.NumAxes]float64 // machine position, mm
	baseOffset [axis.NumAxes]float64 // G92 offset (machine = stream + offset)
	feedrate   float64               // mm/s, speed factor applied

	// Virtual clock, advanced by moves and dwells.
	now float64

	// Per-stream accounting.
	lines    int
	commands int
	unknown  int
	streams  int
}

// NewInterpreter returns an engine with nothing homed and nothing
// moved. Init must run before the first stream.
func NewInterpreter() *Interpreter {
	return &Interpreter{
		log:        log.GetLogger("gcode"),
		absCoords:  true,
		absExtrude: true,
		feedrate:   defaultFeedrate,
	}
}

// Init checks the parts of the configuration the engine depends on and
// binds it.
func (it *Interpreter) Init(cfg *machine.Config) error {
	if err := machine.ValidateAxisMapping(cfg.AxisMapping); err != nil {
		return errors.EngineInitError(err.Error())
	}
	if err := machine.ValidateChannelLayout(cfg.ChannelLayout); err != nil {
		return errors.EngineInitError(err.Error())
	}
	if cfg.SpeedFactor <= 0 {
		return errors.EngineInitError(fmt.Sprintf("speed factor %g out of range", cfg.SpeedFactor))
	}
	it.cfg = cfg
	it.log.WithFields(log.Fields{
		"axis-mapping":   cfg.AxisMapping,
		"channel-layout": cfg.ChannelLayout,
		"speed-factor":   cfg.SpeedFactor,
	}).Debug("engine configured")
	if cfg.DryRun {
		it.log.Info("dry run: motion tracked, nothing driven")
	}
	return nil
}

// Process consumes one command stream. Responses and diagnostics go to
// out; the host's own records go through the logger.
func (it *Interpreter) Process(in io.Reader, out io.Writer) engine.Status {
	it.streams++
	it.lines, it.commands, it.unknown = 0, 0, 0

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		it.lines++
		cmd := parseLine(sc.Text())
		if cmd == nil {
			continue
		}
		it.commands++
		if it.cfg.DebugPrint {
			it.log.Info(cmd.Raw)
		}
		status, err := it.exec(cmd, out)
		if err != nil {
			return engine.StatusStreamError
		}
		if status != engine.StatusOK {
			return status
		}
		if _, err := io.WriteString(out, "ok\n"); err != nil {
			return engine.StatusStreamError
		}
	}
	if err := sc.Err(); err != nil {
		it.log.WithError(err).Error("stream read failed")
		return engine.StatusStreamError
	}
	it.log.WithFields(log.Fields{
		"lines":    it.lines,
		"commands": it.commands,
		"unknown":  it.unknown,
		"time":     fmt.Sprintf("%.3fs", it.now),
	}).Info("stream complete")
	return engine.StatusOK
}

// Shutdown ends the engine. The virtual machine has no hardware to
// release; the final odometer goes to the log.
func (it *Interpreter) Shutdown() {
	it.log.WithFields(log.Fields{
		"streams": it.streams,
		"time":    fmt.Sprintf("%.3fs", it.now),
	}).Debug("engine shut down")
}

// exec runs one command. The returned error is a write failure on out;
// a non-OK status halts the stream.
func (it *Interpreter) exec(cmd *command, out io.Writer) (engine.Status, error) {
	switch cmd.Name {
	case "G0", "G1":
		it.execMove(cmd)
	case "G4":
		it.execDwell(cmd)
	case "G28":
		it.execHome(cmd)
	case "G90":
		it.absCoords = true
	case "G91":
		it.absCoords = false
	case "G92":
		it.execSetOrigin(cmd)
	case "M82":
		it.absExtrude = true
	case "M83":
		it.absExtrude = false
	case "M18", "M84":
		// Motor power is not simulated.
	case "M114":
		if err := it.writePosition(out); err != nil {
			return engine.StatusOK, err
		}
	case "M112":
		it.log.Error("emergency stop (M112), halting stream")
		return engine.StatusEmergencyStop, nil
	default:
		it.unknown++
		if _, err := fmt.Fprintf(out, "// unknown command: %s\n", cmd.Name); err != nil {
			return engine.StatusOK, err
		}
	}
	return engine.StatusOK, nil
}

// execMove handles G0/G1: coordinate words move the virtual position,
// F updates the feedrate. Stream feedrates are mm/min.
func (it *Interpreter) execMove(cmd *command) {
	start := it.position
	for a := axis.Axis(0); a < axis.NumAxes; a++ {
		v, ok, err := cmd.floatArg(a.String())
		if err != nil {
			it.log.WithError(err).Debug("move word ignored")
			continue
		}
		if !ok {
			continue
		}
		absolute := it.absCoords
		if a == axis.E {
			absolute = it.absExtrude
		}
		target := it.position[a] + v
		if absolute {
			target = v + it.baseOffset[a]
		}
		it.position[a] = it.clip(a, target)
	}
	if f, ok, err := cmd.floatArg("F"); err != nil {
		it.log.WithError(err).Debug("feedrate word ignored")
	} else if ok && f > 0 {
		it.feedrate = f / 60.0 * it.cfg.SpeedFactor
	}
	it.advanceClock(start)
}

// clip bounds a target coordinate to the axis travel range. A range
// below zero means unbounded travel.
func (it *Interpreter) clip(a axis.Axis, target float64) float64 {
	r := it.cfg.MoveRangeMM[a]
	if r < 0 {
		return target
	}
	if target < 0 {
		return 0
	}
	if target > r {
		return r
	}
	return target
}

// advanceClock adds the travel time of the move that ended at the
// current position.
func (it *Interpreter) advanceClock(start [axis.NumAxes]float64) {
	var sum float64
	for a := 0; a < axis.NumAxes; a++ {
		d := it.position[a] - start[a]
		sum += d * d
	}
	if sum == 0 || it.feedrate <= 0 {
		return
	}
	it.now += math.Sqrt(sum) / it.feedrate
}

// execDwell handles G4 with P (milliseconds) or S (seconds).
func (it *Interpreter) execDwell(cmd *command) {
	if p, ok, err := cmd.floatArg("P"); err == nil && ok {
		it.now += p / 1000.0
		return
	}
	if s, ok, err := cmd.floatArg("S"); err == nil && ok {
		it.now += s
	}
}

// execHome handles G28. Axes named in the command (all axes when none
// are named) move to their home switch; axes without a switch have no
// reference and stay put. Homing clears the G92 offset of each homed
// axis.
func (it *Interpreter) execHome(cmd *command) {
	all := len(cmd.Args) == 0
	for a := axis.Axis(0); a < axis.NumAxes; a++ {
		if !all && !cmd.hasArg(a.String()) {
			continue
		}
		switch it.cfg.HomeSwitch[a] {
		case axis.HomeOrigin:
			it.position[a] = 0
		case axis.HomeEndRange:
			if r := it.cfg.MoveRangeMM[a]; r > 0 {
				it.position[a] = r
			} else {
				it.position[a] = 0
			}
		default:
			continue
		}
		it.baseOffset[a] = 0
	}
}

// execSetOrigin handles G92: the offset is set so that the current
// machine position reads as the given coordinate.
func (it *Interpreter) execSetOrigin(cmd *command) {
	for a := axis.Axis(0); a < axis.NumAxes; a++ {
		v, ok, err := cmd.floatArg(a.String())
		if err != nil {
			it.log.WithError(err).Debug("origin word ignored")
			continue
		}
		if !ok {
			continue
		}
		it.baseOffset[a] = it.position[a] - v
	}
}

// writePosition answers M114 with the current stream coordinates.
func (it *Interpreter) writePosition(out io.Writer) error {
	var b strings.Builder
	for a := axis.Axis(0); a < axis.NumAxes; a++ {
		if a > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s:%.3f", a, it.position[a]-it.baseOffset[a])
	}
	b.WriteByte('\n')
	_, err := io.WriteString(out, b.String())
	return err
}

// GetPosition returns the machine position in mm.
func (it *Interpreter) GetPosition() [axis.NumAxes]float64 {
	return it.position
}

// GetFeedrate returns the current feedrate in mm/s.
func (it *Interpreter) GetFeedrate() float64 {
	return it.feedrate
}

// GetVirtualTime returns the accumulated motion time in seconds.
func (it *Interpreter) GetVirtualTime() float64 {
	return it.now
}

// GetUnknownCount returns how many commands of the last stream were
// acknowledged without being understood.
func (it *Interpreter) GetUnknownCount() int {
	return it.unknown
}

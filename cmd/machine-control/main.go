// machine-control drives a stepper-motor machine from GCode, read
// either from a file or from TCP clients served one at a time.
//
// Usage:
//
//	machine-control [options] [<gcode-filename>]
//
// Exactly one GCode source must be selected: a filename argument for
// file playback, or --port for server mode. Per-axis options take
// comma separated lists in the fixed axis order X,Y,Z,E,A,B,C; a
// shorter list overrides only the leading axes and leaves the rest at
// their defaults.
//
// Examples:
//
//	# Play a file once with a denser X/Y leadscrew
//	machine-control --steps-mm 320,320 job.gcode
//
//	# Stress test: repeat the file forever without driving motors
//	machine-control -n -R job.gcode
//
//	# Serve GCode clients on port 4444, local interface only
//	machine-control --port 4444 --bind-addr 127.0.0.1
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"machine-control-go/pkg/axis"
	"machine-control-go/pkg/errors"
	"machine-control-go/pkg/gcode"
	"machine-control-go/pkg/ingress"
	"machine-control-go/pkg/log"
	"machine-control-go/pkg/machine"
)

// options holds everything the command line selects beyond the machine
// configuration itself.
type options struct {
	cfg      machine.Config
	filename string
	port     int
	bindAddr string
	repeat   bool
}

// floatListValue overwrites the leading slots of a per-axis array the
// moment its flag is parsed, so later flags win over earlier ones.
type floatListValue struct {
	dest *[axis.NumAxes]float64
	msg  string
}

func (v *floatListValue) String() string {
	if v.dest == nil {
		return ""
	}
	parts := make([]string, axis.NumAxes)
	for i, f := range v.dest {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func (v *floatListValue) Set(s string) error {
	if axis.ParseFloatList(s, v.dest[:]) == 0 {
		return fmt.Errorf("%s", v.msg)
	}
	return nil
}

// homeListValue parses numeric home switch types; only 0, 1 and 2 are
// meaningful, anything else is a hardware description error.
type homeListValue struct {
	dest *[axis.NumAxes]axis.HomeType
}

func (v *homeListValue) String() string {
	if v.dest == nil {
		return ""
	}
	parts := make([]string, axis.NumAxes)
	for i, h := range v.dest {
		parts[i] = strconv.Itoa(int(h))
	}
	return strings.Join(parts, ",")
}

func (v *homeListValue) Set(s string) error {
	if n, ok := axis.ParseHomeList(s, v.dest[:]); !ok || n == 0 {
		return fmt.Errorf("Failed to parse home switch.")
	}
	return nil
}

type mappingValue struct {
	cfg *machine.Config
}

func (v *mappingValue) String() string {
	if v.cfg == nil {
		return ""
	}
	return v.cfg.AxisMapping
}

func (v *mappingValue) Set(s string) error {
	if err := machine.ValidateAxisMapping(s); err != nil {
		return err
	}
	v.cfg.AxisMapping = s
	return nil
}

// profileValue loads a hardware profile at the flag's position in the
// command line, so flags after -c override the profile and flags
// before it are overridden by it.
type profileValue struct {
	cfg *machine.Config
}

func (v *profileValue) String() string { return "" }

func (v *profileValue) Set(s string) error {
	return machine.ApplyProfile(v.cfg, s)
}

type speedFactorValue struct {
	cfg *machine.Config
}

func (v *speedFactorValue) String() string {
	if v.cfg == nil {
		return ""
	}
	return strconv.FormatFloat(v.cfg.SpeedFactor, 'g', -1, 64)
}

func (v *speedFactorValue) Set(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return fmt.Errorf("Speedfactor cannot be <= 0")
	}
	return v.cfg.SetSpeedFactor(f)
}

func printUsage(w io.Writer, prog string) {
	fmt.Fprintf(w, "Usage: %s [options] [<gcode-filename>]\n"+
		"Options:\n"+
		"  --steps-mm <axis-steps>   : steps/mm, comma separated (Default 160,160,160,40,1,0,0).\n"+
		"  --max-feedrate <rate> (-m): Max. feedrate per axis (mm/s), comma separated (Default: 200,200,90,10,1,0,0).\n"+
		"  --accel <accel>       (-a): Acceleration per axis (mm/s^2), comma separated (Default 4000,4000,1000,10000,1,0,0).\n"+
		"  --home-pos <types>        : Home switch per axis, comma separated; 0 = none, 1 = origin, 2 = end-of-range (Default: 1,1,1,0,0,0,0).\n"+
		"  --range <range-mm>    (-r): Moveable range per axis in mm (0..range[axis]), comma separated; values < 0 are unbounded (Default: 100,100,100,-1,-1,-1,-1).\n"+
		"  --axis-mapping            : Axis letter mapped to which motor connector (=string pos). Use letter or '_' for empty slot (Default: 'XYZEA').\n"+
		"  --config <file>       (-c): Load a hardware profile; flags after it override it.\n"+
		"  --port <port>         (-p): Listen on this TCP port.\n"+
		"  --bind-addr <bind-ip> (-b): Bind to this IP (Default: 0.0.0.0).\n"+
		"  -f <factor>               : Print speed factor (Default 1.0).\n"+
		"  -n                        : Dryrun; don't send to motors (Default: off).\n"+
		"  -P                        : Verbose: Print motor commands (Default: off).\n"+
		"  -S                        : Synchronous: don't queue (Default: off).\n"+
		"  -R                        : Repeat file forever.\n",
		prog)
	fmt.Fprintf(w, "All comma separated axis numerical values are in the sequence X,Y,Z,E,A,B,C\n")
	fmt.Fprintf(w, "You can either specify --port <port> to listen for commands or give a filename\n")
}

// parseFlags consumes args strictly in command-line order, each option
// applying to the configuration as it is seen, then validates that
// exactly one ingress source was selected. On failure the usage text
// has already been written to out.
func parseFlags(args []string, out io.Writer) (*options, error) {
	opts := &options{cfg: machine.DefaultConfig(), port: -1}

	fs := flag.NewFlagSet("machine-control", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { printUsage(fs.Output(), fs.Name()) }

	fs.Var(&floatListValue{&opts.cfg.StepsPerMM, "steps/mm failed to parse."}, "steps-mm", "steps/mm per axis")
	feedrate := &floatListValue{&opts.cfg.MaxFeedrate, "max-feedrate missing."}
	fs.Var(feedrate, "max-feedrate", "max feedrate per axis (mm/s)")
	fs.Var(feedrate, "m", "max feedrate per axis (mm/s)")
	accel := &floatListValue{&opts.cfg.Acceleration, "Acceleration missing."}
	fs.Var(accel, "accel", "acceleration per axis (mm/s^2)")
	fs.Var(accel, "a", "acceleration per axis (mm/s^2)")
	ranges := &floatListValue{&opts.cfg.MoveRangeMM, "Failed to parse ranges."}
	fs.Var(ranges, "range", "moveable range per axis (mm)")
	fs.Var(ranges, "r", "moveable range per axis (mm)")
	fs.Var(&homeListValue{&opts.cfg.HomeSwitch}, "home-pos", "home switch type per axis")
	fs.Var(&mappingValue{&opts.cfg}, "axis-mapping", "axis letter per motor connector")
	profile := &profileValue{&opts.cfg}
	fs.Var(profile, "config", "hardware profile file")
	fs.Var(profile, "c", "hardware profile file")
	fs.IntVar(&opts.port, "port", -1, "TCP listen port")
	fs.IntVar(&opts.port, "p", -1, "TCP listen port")
	fs.StringVar(&opts.bindAddr, "bind-addr", "", "server bind address")
	fs.StringVar(&opts.bindAddr, "b", "", "server bind address")
	fs.Var(&speedFactorValue{&opts.cfg}, "f", "speed factor")
	fs.BoolVar(&opts.cfg.DryRun, "n", false, "dry run")
	fs.BoolVar(&opts.cfg.DebugPrint, "P", false, "echo commands")
	fs.BoolVar(&opts.cfg.Synchronous, "S", false, "no queuing")
	fs.BoolVar(&opts.repeat, "R", false, "repeat file forever")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	usageErr := func(msg string) error {
		fmt.Fprintf(out, "%s\n\n", msg)
		fs.Usage()
		return errors.UsageError("%s", msg)
	}

	switch {
	case fs.NArg() > 1:
		return nil, usageErr("Only one gcode filename can be given.")
	case fs.NArg() == 1:
		opts.filename = fs.Arg(0)
	}
	if (opts.filename != "") == (opts.port > 0) {
		return nil, usageErr("Choose one: <gcode-filename> or --port <port>.")
	}
	if opts.filename == "" && opts.repeat {
		return nil, usageErr("-R (repeat) only makes sense with a filename.")
	}
	return opts, nil
}

func run(args []string, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err == flag.ErrHelp {
		return 0
	}
	if err != nil {
		return 1
	}

	logger := log.GetLogger("main")
	eng := gcode.NewInterpreter()
	if err := eng.Init(&opts.cfg); err != nil {
		logger.Errorf("cannot initialize engine: %v", err)
		return 1
	}
	defer eng.Shutdown()

	if opts.filename != "" {
		player := ingress.NewFilePlayer(eng, opts.repeat)
		player.SetOutput(stderr)
		err = player.Play(opts.filename)
	} else {
		err = ingress.NewServer(eng).Run(opts.bindAddr, opts.port)
	}
	if err != nil {
		logger.Errorf("%v", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

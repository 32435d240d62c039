package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"machine-control-go/pkg/axis"
	"machine-control-go/pkg/errors"
	"machine-control-go/pkg/log"
)

func TestMain(m *testing.M) {
	quiet := log.New("machine-control")
	quiet.SetWriter(io.Discard)
	log.SetDefaultLogger(quiet)
	os.Exit(m.Run())
}

func mustParse(t *testing.T, args ...string) *options {
	t.Helper()
	var buf bytes.Buffer
	opts, err := parseFlags(args, &buf)
	if err != nil {
		t.Fatalf("parseFlags(%q) failed: %v\n%s", args, err, buf.String())
	}
	return opts
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestParseDefaults(t *testing.T) {
	opts := mustParse(t, "job.gcode")
	if opts.filename != "job.gcode" {
		t.Errorf("filename = %q", opts.filename)
	}
	if opts.port != -1 {
		t.Errorf("port = %d, want -1 when not given", opts.port)
	}
	want := [axis.NumAxes]float64{160, 160, 160, 40, 1, 0, 0}
	if opts.cfg.StepsPerMM != want {
		t.Errorf("StepsPerMM = %v, want defaults %v", opts.cfg.StepsPerMM, want)
	}
	if opts.cfg.AxisMapping != "XYZEA" || opts.cfg.SpeedFactor != 1.0 {
		t.Errorf("mapping/speed = %q/%g, want defaults", opts.cfg.AxisMapping, opts.cfg.SpeedFactor)
	}
}

func TestPartialListKeepsDefaults(t *testing.T) {
	opts := mustParse(t, "--steps-mm", "80,80", "job.gcode")
	want := [axis.NumAxes]float64{80, 80, 160, 40, 1, 0, 0}
	if opts.cfg.StepsPerMM != want {
		t.Errorf("StepsPerMM = %v, want %v", opts.cfg.StepsPerMM, want)
	}
}

func TestShortAndLongAliases(t *testing.T) {
	short := mustParse(t, "-m", "50", "job.gcode")
	long := mustParse(t, "--max-feedrate", "50", "job.gcode")
	if short.cfg.MaxFeedrate != long.cfg.MaxFeedrate {
		t.Errorf("alias mismatch: %v vs %v", short.cfg.MaxFeedrate, long.cfg.MaxFeedrate)
	}
	if short.cfg.MaxFeedrate[axis.X] != 50 {
		t.Errorf("MaxFeedrate[X] = %g, want 50", short.cfg.MaxFeedrate[axis.X])
	}
}

func TestLaterFlagWins(t *testing.T) {
	opts := mustParse(t, "-m", "100", "--max-feedrate", "300,300", "job.gcode")
	want := [axis.NumAxes]float64{300, 300, 90, 10, 1, 0, 0}
	if opts.cfg.MaxFeedrate != want {
		t.Errorf("MaxFeedrate = %v, want %v", opts.cfg.MaxFeedrate, want)
	}
}

func TestProfileOrdering(t *testing.T) {
	prof := writeFile(t, "machine.ini", "[axis x]\nsteps-mm = 80\n")

	opts := mustParse(t, "-c", prof, "--steps-mm", "120", "job.gcode")
	if got := opts.cfg.StepsPerMM[axis.X]; got != 120 {
		t.Errorf("flag after profile: StepsPerMM[X] = %g, want 120", got)
	}

	opts = mustParse(t, "--steps-mm", "120", "-c", prof, "job.gcode")
	if got := opts.cfg.StepsPerMM[axis.X]; got != 80 {
		t.Errorf("profile after flag: StepsPerMM[X] = %g, want 80", got)
	}
}

func TestHomePosOverride(t *testing.T) {
	opts := mustParse(t, "--home-pos", "2,0,1", "job.gcode")
	want := [axis.NumAxes]axis.HomeType{
		axis.HomeEndRange, axis.HomeNone, axis.HomeOrigin,
		axis.HomeNone, axis.HomeNone, axis.HomeNone, axis.HomeNone,
	}
	if opts.cfg.HomeSwitch != want {
		t.Errorf("HomeSwitch = %v, want %v", opts.cfg.HomeSwitch, want)
	}
}

func TestSpeedFactor(t *testing.T) {
	opts := mustParse(t, "-f", "2.5", "job.gcode")
	if opts.cfg.SpeedFactor != 2.5 {
		t.Errorf("SpeedFactor = %g, want 2.5", opts.cfg.SpeedFactor)
	}
}

func TestModeFlags(t *testing.T) {
	opts := mustParse(t, "-n", "-P", "-S", "job.gcode")
	if !opts.cfg.DryRun || !opts.cfg.DebugPrint || !opts.cfg.Synchronous {
		t.Errorf("mode flags = %v/%v/%v, want all set",
			opts.cfg.DryRun, opts.cfg.DebugPrint, opts.cfg.Synchronous)
	}
}

func TestServerSelection(t *testing.T) {
	opts := mustParse(t, "-p", "9000", "--bind-addr", "127.0.0.1")
	if opts.port != 9000 || opts.bindAddr != "127.0.0.1" {
		t.Errorf("port/bind = %d/%q", opts.port, opts.bindAddr)
	}
	if opts.filename != "" {
		t.Errorf("filename = %q, want none in server mode", opts.filename)
	}
}

func TestBadOptionValues(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--steps-mm", "nope", "job.gcode"}, "steps/mm failed to parse."},
		{[]string{"-m", "x,200", "job.gcode"}, "max-feedrate missing."},
		{[]string{"-a", "oops", "job.gcode"}, "Acceleration missing."},
		{[]string{"-r", "bad", "job.gcode"}, "Failed to parse ranges."},
		{[]string{"--home-pos", "3", "job.gcode"}, "Failed to parse home switch."},
		{[]string{"--home-pos", "x", "job.gcode"}, "Failed to parse home switch."},
		{[]string{"-f", "0", "job.gcode"}, "Speedfactor cannot be <= 0"},
		{[]string{"-f", "-1", "job.gcode"}, "Speedfactor cannot be <= 0"},
		{[]string{"-f", "junk", "job.gcode"}, "Speedfactor cannot be <= 0"},
		{[]string{"--axis-mapping", "XX", "job.gcode"}, "mapped twice"},
		{[]string{"--axis-mapping", "XQ", "job.gcode"}, "unknown axis letter"},
		{[]string{"-p", "notaport"}, "invalid value"},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		if _, err := parseFlags(tc.args, &buf); err == nil {
			t.Errorf("parseFlags(%q) should fail", tc.args)
			continue
		}
		if !strings.Contains(buf.String(), tc.want) {
			t.Errorf("parseFlags(%q) output %q, want it to contain %q", tc.args, buf.String(), tc.want)
		}
	}
}

func TestIngressSelectionValidation(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, "Choose one: <gcode-filename> or --port <port>."},
		{[]string{"-p", "4444", "job.gcode"}, "Choose one: <gcode-filename> or --port <port>."},
		{[]string{"-p", "0"}, "Choose one: <gcode-filename> or --port <port>."},
		{[]string{"-R", "-p", "4444"}, "-R (repeat) only makes sense with a filename."},
		{[]string{"a.gcode", "b.gcode"}, "Only one gcode filename can be given."},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		_, err := parseFlags(tc.args, &buf)
		if err == nil {
			t.Errorf("parseFlags(%q) should fail", tc.args)
			continue
		}
		if !errors.Is(err, errors.ErrUsage) {
			t.Errorf("parseFlags(%q) error = %v, want %s", tc.args, err, errors.ErrUsage)
		}
		out := buf.String()
		if !strings.Contains(out, tc.want) {
			t.Errorf("parseFlags(%q) output %q, want it to contain %q", tc.args, out, tc.want)
		}
		if !strings.Contains(out, "Usage: machine-control") {
			t.Errorf("parseFlags(%q) output misses the usage text", tc.args)
		}
	}
}

func TestUnknownFlag(t *testing.T) {
	var buf bytes.Buffer
	if _, err := parseFlags([]string{"--bogus", "job.gcode"}, &buf); err == nil {
		t.Fatal("parseFlags should reject unknown flags")
	}
	if !strings.Contains(buf.String(), "Usage: machine-control") {
		t.Errorf("output %q, want the usage text", buf.String())
	}
}

func TestRunHelp(t *testing.T) {
	for _, arg := range []string{"-h", "--help"} {
		var buf bytes.Buffer
		if code := run([]string{arg}, &buf); code != 0 {
			t.Errorf("run(%s) = %d, want 0", arg, code)
		}
		if !strings.Contains(buf.String(), "Usage: machine-control") {
			t.Errorf("run(%s) output %q, want the usage text", arg, buf.String())
		}
	}
}

func TestRunUsageErrorExitCode(t *testing.T) {
	var buf bytes.Buffer
	if code := run(nil, &buf); code != 1 {
		t.Errorf("run() = %d, want 1", code)
	}
}

func TestRunPlaysFile(t *testing.T) {
	path := writeFile(t, "job.gcode", "G1 X10\nM114\nM999\n")
	var buf bytes.Buffer
	if code := run([]string{path}, &buf); code != 0 {
		t.Fatalf("run = %d, want 0\n%s", code, buf.String())
	}
	out := buf.String()
	if !strings.Contains(out, "ok\n") {
		t.Errorf("output %q, want command acknowledgements", out)
	}
	if !strings.Contains(out, "X:10.000") {
		t.Errorf("output %q, want the position report", out)
	}
	if !strings.Contains(out, "// unknown command: M999") {
		t.Errorf("output %q, want the unknown-command note", out)
	}
}

func TestRunMissingFile(t *testing.T) {
	var buf bytes.Buffer
	if code := run([]string{"/no/such/job.gcode"}, &buf); code != 1 {
		t.Errorf("run = %d, want 1", code)
	}
}

func TestRunRejectsHugePort(t *testing.T) {
	var buf bytes.Buffer
	if code := run([]string{"-p", "70000"}, &buf); code != 1 {
		t.Errorf("run = %d, want 1", code)
	}
}

package gcode

import "testing"

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		name string
		args map[string]string
	}{
		{"G1 X10 Y-5.5", "G1", map[string]string{"X": "10", "Y": "-5.5"}},
		{"  g28 x y", "G28", map[string]string{"X": "", "Y": ""}},
		{"M114", "M114", map[string]string{}},
		{"G1 X10 ; trailing comment", "G1", map[string]string{"X": "10"}},
		{"G1 (inline note) X10", "G1", map[string]string{"X": "10"}},
		{"G4 P1000", "G4", map[string]string{"P": "1000"}},
		{"m112", "M112", map[string]string{}},
	}

	for _, tt := range tests {
		cmd := parseLine(tt.line)
		if cmd == nil {
			t.Fatalf("parseLine(%q) = nil", tt.line)
		}
		if cmd.Name != tt.name {
			t.Errorf("parseLine(%q) name = %q, want %q", tt.line, cmd.Name, tt.name)
		}
		if len(cmd.Args) != len(tt.args) {
			t.Errorf("parseLine(%q) args = %v, want %v", tt.line, cmd.Args, tt.args)
		}
		for k, want := range tt.args {
			if got, ok := cmd.Args[k]; !ok || got != want {
				t.Errorf("parseLine(%q) arg %s = %q, want %q", tt.line, k, got, want)
			}
		}
	}
}

func TestParseLineNoCommand(t *testing.T) {
	for _, line := range []string{"", "   ", "; full comment", "(only a note)", "\t; x"} {
		if cmd := parseLine(line); cmd != nil {
			t.Errorf("parseLine(%q) = %+v, want nil", line, cmd)
		}
	}
}

func TestFloatArg(t *testing.T) {
	cmd := parseLine("G1 X10.5 Y Zfoo")
	if cmd == nil {
		t.Fatal("parseLine returned nil")
	}

	v, ok, err := cmd.floatArg("X")
	if err != nil || !ok || v != 10.5 {
		t.Errorf("floatArg(X) = %v, %v, %v; want 10.5, true, nil", v, ok, err)
	}

	// Bare letter: present but without a value.
	if _, ok, err := cmd.floatArg("Y"); !ok || err == nil {
		t.Errorf("floatArg(Y) = _, %v, %v; want present with error", ok, err)
	}

	// Unparseable value.
	if _, ok, err := cmd.floatArg("Z"); !ok || err == nil {
		t.Errorf("floatArg(Z) = _, %v, %v; want present with error", ok, err)
	}

	// Absent letter.
	if _, ok, err := cmd.floatArg("W"); ok || err != nil {
		t.Errorf("floatArg(W) = _, %v, %v; want absent without error", ok, err)
	}
}

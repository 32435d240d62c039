package gcode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// command is one parsed GCode command: the uppercased command word and
// its letter-keyed arguments.
type command struct {
	Name string
	Args map[string]string
	Raw  string
}

var reParenComment = regexp.MustCompile(`\([^)]*\)`)

// parseLine splits one stream line into a command. Semicolon comments
// run to end of line, parenthesized comments are inline. Returns nil
// when no command remains.
func parseLine(line string) *command {
	ln := strings.TrimSpace(line)
	if ln == "" {
		return nil
	}
	if idx := strings.IndexByte(ln, ';'); idx >= 0 {
		ln = strings.TrimSpace(ln[:idx])
	}
	if ln == "" {
		return nil
	}
	ln = strings.TrimSpace(reParenComment.ReplaceAllString(ln, " "))
	if ln == "" {
		return nil
	}

	fields := strings.Fields(ln)
	name := strings.ToUpper(fields[0])
	args := make(map[string]string, len(fields)-1)
	for _, f := range fields[1:] {
		// Letter-params like "X120.5", "F3000"; a bare letter as in
		// "G28 X Y" names an axis with no value.
		k := strings.ToUpper(f[:1])
		args[k] = f[1:]
	}
	return &command{Name: name, Args: args, Raw: line}
}

// floatArg returns the numeric value of one letter argument. ok
// reports whether the letter appeared at all; err is set when it
// appeared without a parseable number.
func (c *command) floatArg(key string) (float64, bool, error) {
	v, present := c.Args[key]
	if !present {
		return 0, false, nil
	}
	if v == "" {
		return 0, true, fmt.Errorf("empty value for %s in %q", key, c.Raw)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, true, fmt.Errorf("bad value %s=%q in %q", key, v, c.Raw)
	}
	return f, true, nil
}

// hasArg reports whether a letter argument appeared, with or without a
// value.
func (c *command) hasArg(key string) bool {
	_, ok := c.Args[key]
	return ok
}

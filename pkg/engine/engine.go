// Package engine defines the contract between the ingress drivers and
// the GCode execution engine. The drivers treat the command stream as
// opaque bytes; all motion semantics live behind this interface.
package engine

import (
	"fmt"
	"io"

	"machine-control-go/pkg/machine"
)

// Status is the result of processing one command stream.
type Status int

const (
	// StatusOK indicates the stream was consumed to EOF.
	StatusOK Status = 0

	// StatusStreamError indicates a read or write failure on the stream.
	StatusStreamError Status = 1

	// StatusEmergencyStop indicates the stream requested an immediate
	// stop (M112) and no further commands may be executed.
	StatusEmergencyStop Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusStreamError:
		return "stream error"
	case StatusEmergencyStop:
		return "emergency stop"
	default:
		return fmt.Sprintf("status %d", int(s))
	}
}

// Engine executes GCode byte streams against one machine configuration.
type Engine interface {
	// Init prepares the engine for the given configuration. It is
	// called exactly once, before the first Process call.
	Init(cfg *machine.Config) error

	// Process consumes commands from in until EOF or failure, writing
	// acknowledgements and responses to out. It blocks the caller for
	// the lifetime of the stream. A StatusOK return means the engine
	// is ready for another stream.
	Process(in io.Reader, out io.Writer) Status

	// Shutdown releases engine resources. It runs on every exit path
	// after a successful Init, including after a failed Process.
	Shutdown()
}

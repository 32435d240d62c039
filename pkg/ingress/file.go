package ingress

import (
	"io"
	"os"

	"machine-control-go/pkg/engine"
	"machine-control-go/pkg/errors"
	"machine-control-go/pkg/log"
)

// FilePlayer replays a GCode file through the engine, once or forever.
// The file carries commands only, so engine responses go to a separate
// output channel, stderr unless redirected.
type FilePlayer struct {
	eng    engine.Engine
	log    *log.Logger
	out    io.Writer
	repeat bool
}

// NewFilePlayer returns a player feeding files to eng. With repeat set
// the file replays indefinitely and Play only returns on failure.
func NewFilePlayer(eng engine.Engine, repeat bool) *FilePlayer {
	return &FilePlayer{
		eng:    eng,
		log:    log.GetLogger("file"),
		out:    os.Stderr,
		repeat: repeat,
	}
}

// SetOutput redirects the engine's response channel away from stderr.
func (p *FilePlayer) SetOutput(w io.Writer) {
	p.out = w
}

// Play processes the file, reopening it for every pass. A non-zero
// engine status aborts immediately, also in the middle of a repeat
// loop.
func (p *FilePlayer) Play(path string) error {
	for pass := 1; ; pass++ {
		f, err := os.Open(path)
		if err != nil {
			return errors.FileError("open", path, err)
		}
		st := p.eng.Process(f, p.out)
		f.Close()

		if st != engine.StatusOK {
			return errors.EngineFailureError(int(st), st.String())
		}
		if !p.repeat {
			return nil
		}
		p.log.Debug("pass %d done, repeating %s", pass, path)
	}
}

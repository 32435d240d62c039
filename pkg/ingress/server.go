package ingress

import (
	"net"
	"os/signal"

	"golang.org/x/sys/unix"

	"machine-control-go/pkg/engine"
	"machine-control-go/pkg/errors"
	"machine-control-go/pkg/log"
)

// State names one phase of the serve loop.
type State int

const (
	// StateListening means the server socket is being prepared.
	StateListening State = iota

	// StateAwaitingConnection means the server blocks in accept.
	StateAwaitingConnection

	// StateServingConnection means one client connection is the
	// engine's stream.
	StateServingConnection

	// StateTerminated means the serve loop has ended and the listener
	// is closed.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateListening:
		return "listening"
	case StateAwaitingConnection:
		return "awaiting-connection"
	case StateServingConnection:
		return "serving-connection"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Server owns the serial TCP accept loop: one client at a time, each
// accepted connection the duplex stream for one engine Process call.
// Connections are served strictly in accept order, never interleaved.
type Server struct {
	eng   engine.Engine
	log   *log.Logger
	state State
}

// NewServer returns a server feeding streams to eng.
func NewServer(eng engine.Engine) *Server {
	return &Server{
		eng:   eng,
		log:   log.GetLogger("server"),
		state: StateListening,
	}
}

// GetState returns the phase the serve loop is in.
func (s *Server) GetState() State {
	return s.state
}

// Run listens on the given address and serves until a terminal error.
// It never returns nil: the loop only ends when accept fails or the
// engine reports a failing stream.
func (s *Server) Run(bindAddr string, port int) error {
	ln, err := Listen(bindAddr, port)
	if err != nil {
		s.state = StateTerminated
		return err
	}

	// A client that disappears mid-write must surface as a stream
	// error, not kill the process.
	signal.Ignore(unix.SIGPIPE)

	host := bindAddr
	if host == "" {
		host = "0.0.0.0"
	}
	s.log.Info("Listening on %s:%d", host, port)
	return s.Serve(ln)
}

// Serve runs the accept loop on an existing listener. It takes
// ownership of ln and closes it when the loop ends.
func (s *Server) Serve(ln net.Listener) error {
	defer ln.Close()
	for {
		s.state = StateAwaitingConnection
		conn, err := ln.Accept()
		if err != nil {
			s.state = StateTerminated
			return errors.SocketError("accept", err)
		}
		remote := conn.RemoteAddr().String()
		s.log.Info("Accepting new connection from %s", remote)

		s.state = StateServingConnection
		st := s.eng.Process(conn, conn)
		conn.Close()
		s.log.Info("Connection to %s closed.", remote)

		if st != engine.StatusOK {
			s.state = StateTerminated
			s.log.Error("Last stream processing status == %d. Exiting", int(st))
			return errors.EngineFailureError(int(st), st.String())
		}
	}
}

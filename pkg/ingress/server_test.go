package ingress

import (
	"io"
	"net"
	"sync"
	"testing"

	"machine-control-go/pkg/engine"
	"machine-control-go/pkg/errors"
)

func TestListenRejectsHugePort(t *testing.T) {
	_, err := Listen("", 65536)
	if err == nil {
		t.Fatal("Listen accepted port 65536")
	}
	if !errors.Is(err, errors.ErrResourceSocket) {
		t.Errorf("error = %v, want %s", err, errors.ErrResourceSocket)
	}
}

func TestListenRejectsBadBindAddr(t *testing.T) {
	for _, addr := range []string{"not-an-ip", "256.1.1.1", "::1"} {
		if _, err := Listen(addr, 0); err == nil {
			t.Errorf("Listen(%q) should fail", addr)
		}
	}
}

func TestListenEphemeralPort(t *testing.T) {
	ln, err := Listen("127.0.0.1", 0)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer ln.Close()
	addr, ok := ln.Addr().(*net.TCPAddr)
	if !ok || addr.Port == 0 {
		t.Errorf("Addr = %v, want a bound TCP address", ln.Addr())
	}
}

// sendStream connects to addr, plays payload as one client session and
// returns everything the server wrote back.
func sendStream(t *testing.T, addr, payload string) string {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial %s failed: %v", addr, err)
	}
	defer conn.Close()
	if _, err := io.WriteString(conn, payload); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := conn.(*net.TCPConn).CloseWrite(); err != nil {
		t.Fatalf("CloseWrite failed: %v", err)
	}
	reply, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	return string(reply)
}

func TestServerServesClientsInOrder(t *testing.T) {
	eng := &scriptedEngine{statuses: []engine.Status{
		engine.StatusOK, engine.StatusEmergencyStop,
	}}
	srv := NewServer(eng)
	srv.log.SetWriter(io.Discard)

	ln, err := Listen("127.0.0.1", 0)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	addr := ln.Addr().String()

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	if reply := sendStream(t, addr, "G1 X1\n"); reply != "done\n" {
		t.Errorf("First client reply = %q, want done", reply)
	}
	sendStream(t, addr, "M112\n")

	err = <-done
	if err == nil {
		t.Fatal("Serve should return the engine failure")
	}
	if !errors.Is(err, errors.ErrEngineFailure) {
		t.Errorf("error = %v, want %s", err, errors.ErrEngineFailure)
	}
	if got := srv.GetState(); got != StateTerminated {
		t.Errorf("State = %v, want %v", got, StateTerminated)
	}
	if eng.calls != 2 {
		t.Fatalf("Process calls = %d, want 2", eng.calls)
	}
	if eng.inputs[0] != "G1 X1\n" || eng.inputs[1] != "M112\n" {
		t.Errorf("Streams = %q, want both client payloads in order", eng.inputs)
	}

	// Serve owns the listener, so after returning nobody is accepting.
	if c, err := net.Dial("tcp", addr); err == nil {
		c.Close()
		t.Error("Listener still accepting after termination")
	}
}

// memListener hands pre-made connections to Serve without a socket.
type memListener struct {
	conns chan net.Conn
	once  sync.Once
}

func (l *memListener) Accept() (net.Conn, error) {
	c, ok := <-l.conns
	if !ok {
		return nil, net.ErrClosed
	}
	return c, nil
}

func (l *memListener) Close() error {
	l.once.Do(func() { close(l.conns) })
	return nil
}

func (l *memListener) Addr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)}
}

func TestServeTerminatesOnEngineFailure(t *testing.T) {
	eng := &scriptedEngine{statuses: []engine.Status{engine.StatusEmergencyStop}}
	srv := NewServer(eng)
	srv.log.SetWriter(io.Discard)

	client, server := net.Pipe()
	client.Close() // the engine sees an immediately exhausted stream

	ln := &memListener{conns: make(chan net.Conn, 1)}
	ln.conns <- server

	err := srv.Serve(ln)
	if !errors.Is(err, errors.ErrEngineFailure) {
		t.Fatalf("error = %v, want %s", err, errors.ErrEngineFailure)
	}
	if eng.calls != 1 {
		t.Errorf("Process calls = %d, want 1", eng.calls)
	}
	if got := srv.GetState(); got != StateTerminated {
		t.Errorf("State = %v, want %v", got, StateTerminated)
	}
}

func TestServeAcceptFailureIsFatal(t *testing.T) {
	eng := &scriptedEngine{}
	srv := NewServer(eng)
	srv.log.SetWriter(io.Discard)

	ln := &memListener{conns: make(chan net.Conn)}
	ln.Close() // accept now fails, as it would on a dead socket

	err := srv.Serve(ln)
	if !errors.Is(err, errors.ErrResourceSocket) {
		t.Fatalf("error = %v, want %s", err, errors.ErrResourceSocket)
	}
	if eng.calls != 0 {
		t.Errorf("Process calls = %d, want 0", eng.calls)
	}
	if got := srv.GetState(); got != StateTerminated {
		t.Errorf("State = %v, want %v", got, StateTerminated)
	}
}

func TestRunRejectsBadBindAddr(t *testing.T) {
	srv := NewServer(&scriptedEngine{})
	srv.log.SetWriter(io.Discard)

	if err := srv.Run("bogus-host", 0); !errors.Is(err, errors.ErrResourceSocket) {
		t.Errorf("Run = %v, want %s", err, errors.ErrResourceSocket)
	}
	if got := srv.GetState(); got != StateTerminated {
		t.Errorf("State = %v, want %v", got, StateTerminated)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateListening, "listening"},
		{StateAwaitingConnection, "awaiting-connection"},
		{StateServingConnection, "serving-connection"},
		{StateTerminated, "terminated"},
		{State(99), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tc.state), got, tc.want)
		}
	}
}

package main

import (
	"bytes"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"machine-control-go/pkg/gcode"
	"machine-control-go/pkg/ingress"
	"machine-control-go/pkg/log"
	"machine-control-go/pkg/machine"
)

func TestMain(m *testing.M) {
	quiet := log.New("machine-control")
	quiet.SetWriter(io.Discard)
	log.SetDefaultLogger(quiet)
	os.Exit(m.Run())
}

// startServer brings up a real machine-control server on an ephemeral
// loopback port and returns its address plus a shutdown hook.
func startServer(t *testing.T) (string, func()) {
	t.Helper()
	cfg := machine.DefaultConfig()
	eng := gcode.NewInterpreter()
	if err := eng.Init(&cfg); err != nil {
		t.Fatalf("engine init failed: %v", err)
	}
	ln, err := ingress.Listen("127.0.0.1", 0)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	srv := ingress.NewServer(eng)
	done := make(chan struct{})
	go func() {
		srv.Serve(ln) // ends with an accept error once the listener closes
		close(done)
	}()
	return ln.Addr().String(), func() {
		ln.Close()
		<-done
		eng.Shutdown()
	}
}

func TestStreamFromStdin(t *testing.T) {
	addr, shutdown := startServer(t)
	defer shutdown()
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("SplitHostPort(%s) failed: %v", addr, err)
	}

	var out, errs bytes.Buffer
	in := strings.NewReader("G1 X10\nM114\n")
	if code := run([]string{"-host", host, "-port", port}, in, &out, &errs); code != 0 {
		t.Fatalf("run = %d, stderr: %s", code, errs.String())
	}
	got := out.String()
	if !strings.Contains(got, "ok\n") {
		t.Errorf("responses = %q, want acknowledgements", got)
	}
	if !strings.Contains(got, "X:10.000") {
		t.Errorf("responses = %q, want the position report", got)
	}
}

func TestStreamFromFile(t *testing.T) {
	addr, shutdown := startServer(t)
	defer shutdown()
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("SplitHostPort(%s) failed: %v", addr, err)
	}

	path := filepath.Join(t.TempDir(), "job.gcode")
	if err := os.WriteFile(path, []byte("G1 X5 Y5\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	var out, errs bytes.Buffer
	code := run([]string{"-host", host, "-port", port, path}, strings.NewReader(""), &out, &errs)
	if code != 0 {
		t.Fatalf("run = %d, stderr: %s", code, errs.String())
	}
	if !strings.Contains(out.String(), "ok\n") {
		t.Errorf("responses = %q, want acknowledgements", out.String())
	}
}

func TestConnectFailure(t *testing.T) {
	// Grab an ephemeral port and close it again so nothing listens there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	host, port, _ := net.SplitHostPort(addr)

	var out, errs bytes.Buffer
	if code := run([]string{"-host", host, "-port", port}, strings.NewReader(""), &out, &errs); code != 1 {
		t.Errorf("run = %d, want 1", code)
	}
	if !strings.Contains(errs.String(), "cannot connect") {
		t.Errorf("stderr = %q, want a connect error", errs.String())
	}
}

func TestMissingInputFile(t *testing.T) {
	var out, errs bytes.Buffer
	if code := run([]string{"/no/such/job.gcode"}, strings.NewReader(""), &out, &errs); code != 1 {
		t.Errorf("run = %d, want 1", code)
	}
	if !strings.Contains(errs.String(), "cannot open") {
		t.Errorf("stderr = %q, want an open error", errs.String())
	}
}

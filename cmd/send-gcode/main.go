// send-gcode streams a GCode file to a running machine-control server
// and prints everything the machine answers.
//
// Usage:
//
//	send-gcode [-host <host>] [-port <port>] [<gcode-filename>]
//
// Without a filename the stream is read from stdin, which allows
// driving a machine interactively:
//
//	echo "G1 X10 F600" | send-gcode -port 4444
package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
)

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("send-gcode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	host := fs.String("host", "127.0.0.1", "server host")
	port := fs.Int("port", 4444, "server port")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}

	var in io.Reader = stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(stderr, "cannot open %s: %v\n", fs.Arg(0), err)
			return 1
		}
		defer f.Close()
		in = f
	}

	addr := net.JoinHostPort(*host, strconv.Itoa(*port))
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		fmt.Fprintf(stderr, "cannot connect to %s: %v\n", addr, err)
		return 1
	}
	defer conn.Close()

	// The upload runs concurrently with the response download; the
	// machine acknowledges while we are still sending.
	sendErr := make(chan error, 1)
	go func() {
		_, err := io.Copy(conn, in)
		if tc, ok := conn.(*net.TCPConn); ok {
			tc.CloseWrite()
		}
		sendErr <- err
	}()

	if _, err := io.Copy(stdout, conn); err != nil {
		fmt.Fprintf(stderr, "connection lost: %v\n", err)
		return 1
	}
	if err := <-sendErr; err != nil {
		fmt.Fprintf(stderr, "send failed: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// Package ingress feeds GCode byte streams to the execution engine,
// either by replaying a file or by serving one TCP client at a time.
package ingress

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"

	"machine-control-go/pkg/errors"
)

// listenBacklog is the kernel accept queue depth: the one client being
// served plus one waiting.
const listenBacklog = 2

// Listen creates the server socket: IPv4, SO_REUSEADDR, backlog of
// listenBacklog. An empty bindAddr binds all interfaces. The port is
// range-checked before any socket call is made.
func Listen(bindAddr string, port int) (net.Listener, error) {
	if port > 65535 {
		return nil, errors.PortRangeError(port)
	}

	ip := net.IPv4zero.To4()
	if bindAddr != "" {
		parsed := net.ParseIP(bindAddr)
		if parsed == nil || parsed.To4() == nil {
			return nil, errors.New(errors.ErrResourceSocket,
				fmt.Sprintf("invalid bind IP address %s", bindAddr))
		}
		ip = parsed.To4()
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, errors.SocketError("create", err)
	}
	unix.CloseOnExec(fd)

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, errors.SocketError("setsockopt", err)
	}

	sa := &unix.SockaddrInet4{Port: port}
	copy(sa.Addr[:], ip)
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, errors.SocketError("bind", err)
	}
	if err := unix.Listen(fd, listenBacklog); err != nil {
		unix.Close(fd)
		return nil, errors.SocketError("listen", err)
	}

	// net.FileListener duplicates the descriptor; the original is
	// released with the os.File.
	f := os.NewFile(uintptr(fd), "gcode-listener")
	ln, err := net.FileListener(f)
	f.Close()
	if err != nil {
		return nil, errors.SocketError("register", err)
	}
	return ln, nil
}

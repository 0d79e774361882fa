package nfsmount

import (
	"fmt"
	"net"
	"strconv"

	billy "github.com/go-git/go-billy/v5"
	nfs "github.com/willscott/go-nfs"
	nfshelper "github.com/willscott/go-nfs/helpers"
)

// DefaultAddr listens on loopback with an ephemeral port.
const DefaultAddr = "127.0.0.1:0"

// Server manages the NFS server lifecycle.
type Server struct {
	listener net.Listener
	port     int
	done     chan error
}

// NewServer starts an NFS server on addr backed by the given filesystem.
func NewServer(fs billy.Filesystem, addr string) (*Server, error) {
	if addr == "" {
		addr = DefaultAddr
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("nfs listen: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port

	handler := nfshelper.NewNullAuthHandler(fs)
	cacheHelper := nfshelper.NewCachingHandler(handler, 4096)

	done := make(chan error, 1)
	go func() {
		done <- nfs.Serve(listener, cacheHelper)
	}()

	return &Server{listener: listener, port: port, done: done}, nil
}

// Port returns the TCP port the NFS server is listening on.
func (s *Server) Port() int {
	return s.port
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Done delivers the serve loop's error once it returns.
func (s *Server) Done() <-chan error {
	return s.done
}

// Close stops the NFS server by closing the listener.
func (s *Server) Close() error {
	return s.listener.Close()
}

// MountCommand returns the command a user would run to mount the export at
// mountpoint on goos. The server never runs it.
func MountCommand(goos string, port int, mountpoint string) ([]string, error) {
	p := strconv.Itoa(port)
	var opts string
	switch goos {
	case "darwin":
		opts = "port=" + p + ",mountport=" + p + ",vers=3,tcp,locallocks,noresvport"
	case "linux":
		opts = "port=" + p + ",mountport=" + p + ",vers=3,tcp,local_lock=all,nolock"
	default:
		return nil, fmt.Errorf("unsupported OS: %s", goos)
	}
	return []string{"sudo", "mount", "-t", "nfs", "-o", opts, "localhost:/", mountpoint}, nil
}

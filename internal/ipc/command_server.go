package ipc

import (
	"errors"
	"io"
	"net"
	"os"
	"sync"

	"github.com/kaedewm/yashiki/internal/command"
	"github.com/kaedewm/yashiki/internal/diag"
	"github.com/kaedewm/yashiki/internal/wire"
)

// CommandHandler processes one decoded Command and returns its
// Response. internal/runloop.Loop satisfies this directly via
// PostCommand, which serializes the request onto the single core
// goroutine and blocks for the reply.
type CommandHandler interface {
	PostCommand(cmd command.Command) command.Response
}

// CommandServer accepts connections on a Unix socket and, for each
// one, decodes a stream of newline-delimited JSON Commands and writes
// back their Responses in turn. Grounded on the teacher's
// server.Server: stale-socket cleanup, one listener, one
// goroutine-per-connection, a quit channel checked on Accept error.
type CommandServer struct {
	addr     string
	handler  CommandHandler
	listener net.Listener
	quit     chan struct{}
	wg       sync.WaitGroup
}

func NewCommandServer(addr string, handler CommandHandler) *CommandServer {
	return &CommandServer{addr: addr, handler: handler, quit: make(chan struct{})}
}

// Start removes any stale socket file left by a prior run, binds the
// listener, and begins accepting connections in the background.
func (s *CommandServer) Start() error {
	if err := os.RemoveAll(s.addr); err != nil {
		return err
	}
	l, err := net.Listen("unix", s.addr)
	if err != nil {
		return err
	}
	s.listener = l
	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *CommandServer) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
				diag.Warnf("ipc: command accept: %v", err)
				continue
			}
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer conn.Close()
			s.serve(conn)
		}()
	}
}

func (s *CommandServer) serve(conn net.Conn) {
	r := wire.NewReader(conn)
	w := wire.NewWriter(conn)
	for {
		var cmd command.Command
		if err := r.Decode(&cmd); err != nil {
			if !errors.Is(err, io.EOF) {
				diag.Debugf("ipc: command decode: %v", err)
			}
			return
		}
		resp := s.handler.PostCommand(cmd)
		if err := w.Encode(resp); err != nil {
			diag.Debugf("ipc: command encode: %v", err)
			return
		}
	}
}

// Stop closes the listener and waits for the accept loop and every
// open connection to return. A connection returns only once its client
// closes it or a read or write on it fails; Stop does not close open
// connections itself.
func (s *CommandServer) Stop() error {
	close(s.quit)
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.wg.Wait()
	return err
}

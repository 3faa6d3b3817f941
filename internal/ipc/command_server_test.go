package ipc

import (
	"net"
	"path/filepath"
	"testing"

	"github.com/kaedewm/yashiki/internal/command"
	"github.com/kaedewm/yashiki/internal/wire"
)

type fakeHandler struct {
	commands []command.Command
}

func (f *fakeHandler) PostCommand(cmd command.Command) command.Response {
	f.commands = append(f.commands, cmd)
	if cmd.Type == command.KindQuit {
		return command.Response{Type: command.RespOk}
	}
	return command.Response{Type: command.RespError, Message: "unsupported in test"}
}

func TestCommandServerRoundTrip(t *testing.T) {
	addr := filepath.Join(t.TempDir(), "cmd.sock")
	handler := &fakeHandler{}
	srv := NewCommandServer(addr, handler)
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer srv.Stop()

	conn, err := net.Dial("unix", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	w := wire.NewWriter(conn)
	r := wire.NewReader(conn)

	if err := w.Encode(command.Command{Type: command.KindQuit}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var resp command.Response
	if err := r.Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Type != command.RespOk {
		t.Fatalf("expected ok, got %q", resp.Type)
	}
	if len(handler.commands) != 1 || handler.commands[0].Type != command.KindQuit {
		t.Fatalf("expected the handler to see the quit command, got %v", handler.commands)
	}
}

func TestCommandServerHandlesMultipleRequestsOnOneConnection(t *testing.T) {
	addr := filepath.Join(t.TempDir(), "cmd.sock")
	handler := &fakeHandler{}
	srv := NewCommandServer(addr, handler)
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer srv.Stop()

	conn, err := net.Dial("unix", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	w := wire.NewWriter(conn)
	r := wire.NewReader(conn)

	for i := 0; i < 3; i++ {
		if err := w.Encode(command.Command{Type: command.KindQuit}); err != nil {
			t.Fatalf("encode %d: %v", i, err)
		}
		var resp command.Response
		if err := r.Decode(&resp); err != nil {
			t.Fatalf("decode %d: %v", i, err)
		}
	}
	if len(handler.commands) != 3 {
		t.Fatalf("expected 3 commands processed, got %d", len(handler.commands))
	}
}

func TestCommandServerStopClosesListener(t *testing.T) {
	addr := filepath.Join(t.TempDir(), "cmd.sock")
	srv := NewCommandServer(addr, &fakeHandler{})
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := srv.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if _, err := net.Dial("unix", addr); err == nil {
		t.Fatal("expected dialing a stopped server's socket to fail")
	}
}

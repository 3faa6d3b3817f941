// Command yashikid is the tiling window-manager daemon. It wires the
// state/command/effect/layout-engine/sync packages into one run loop
// and exposes it over a command socket and an event socket (spec.md
// §2, §6.3). It runs in the foreground; PID-file and supervisor
// machinery (the teacher's cmd/texelation/main.go has both) are out of
// scope here, so use whatever process supervisor the caller prefers.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/profile"

	"github.com/kaedewm/yashiki/internal/diag"
	"github.com/kaedewm/yashiki/internal/effect"
	"github.com/kaedewm/yashiki/internal/hotkey"
	"github.com/kaedewm/yashiki/internal/ipc"
	"github.com/kaedewm/yashiki/internal/layoutengine"
	"github.com/kaedewm/yashiki/internal/platform"
	"github.com/kaedewm/yashiki/internal/runloop"
	"github.com/kaedewm/yashiki/internal/state"
	"github.com/kaedewm/yashiki/internal/tag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "yashikid: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("yashikid", flag.ContinueOnError)

	socketPath := fs.String("socket", defaultSocketPath("yashikid.sock"), "command socket path")
	eventsSocketPath := fs.String("events-socket", defaultSocketPath("yashikid-events.sock"), "event subscription socket path")
	execPath := fs.String("exec-path", os.Getenv("PATH"), "PATH passed to exec/exec_or_focus commands")
	defaultLayout := fs.String("default-layout", "tatami", "layout name used where a display has no layout override")
	defaultTag := fs.Int("default-tag", 1, "tag number (1-32) visible by default on every display")
	verboseLogs := fs.Bool("verbose-logs", false, "enable debug logging")
	profileMode := fs.String("profile", "off", "profiling mode: off, cpu, or mem")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	diag.SetVerbose(*verboseLogs)

	switch strings.ToLower(*profileMode) {
	case "off", "":
	case "cpu":
		defer profile.Start(profile.CPUProfile).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile).Stop()
	default:
		return fmt.Errorf("unknown -profile mode %q (want off, cpu, or mem)", *profileMode)
	}

	s := state.New()
	s.DefaultTag = tag.New(*defaultTag)
	s.DefaultLayout = *defaultLayout
	s.Config.ExecPath = *execPath

	store := hotkey.NewStore()
	layouts := layoutengine.NewManager()
	layouts.SetExecPath(*execPath)
	defer layouts.Close()

	ws := platform.NoopWindowSystem{}
	manipulator := platform.NoopWindowManipulator{}
	executor := effect.NewExecutor(s, manipulator, layouts)

	loop := runloop.New(s, store, layouts, executor, ws)

	broadcaster := ipc.NewBroadcaster()
	loop.Sink = broadcaster

	loop.Bootstrap()

	go loop.Run()
	defer loop.Stop()

	cmdServer := ipc.NewCommandServer(*socketPath, loop)
	if err := cmdServer.Start(); err != nil {
		return fmt.Errorf("start command socket: %w", err)
	}
	defer cmdServer.Stop()

	eventServer := ipc.NewEventServer(*eventsSocketPath, broadcaster, loop)
	if err := eventServer.Start(); err != nil {
		return fmt.Errorf("start event socket: %w", err)
	}
	defer eventServer.Stop()

	diag.Infof("yashikid: listening on %s (commands) and %s (events)", *socketPath, *eventsSocketPath)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	diag.Infof("yashikid: shutting down")
	return nil
}

func defaultSocketPath(name string) string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, name)
	}
	return filepath.Join(os.TempDir(), name)
}

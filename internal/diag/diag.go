// Package diag provides a single verbosity toggle shared by every
// internal package, following the teacher's discard-by-default debug
// logger convention (one log.Logger per concern, io.Discard unless
// verbose logging is requested).
package diag

import (
	"io"
	"log"
	"os"
)

var (
	debugLog = log.New(io.Discard, "", log.LstdFlags)
	infoLog  = log.New(os.Stderr, "", log.LstdFlags)
	warnLog  = log.New(os.Stderr, "WARN ", log.LstdFlags)
)

// SetVerbose toggles debug-level output. Info and warning lines always
// reach stderr; only Debugf is gated.
func SetVerbose(enable bool) {
	if enable {
		debugLog.SetOutput(os.Stderr)
	} else {
		debugLog.SetOutput(io.Discard)
	}
}

func Debugf(format string, args ...any) { debugLog.Printf(format, args...) }
func Infof(format string, args ...any)  { infoLog.Printf(format, args...) }
func Warnf(format string, args ...any)  { warnLog.Printf(format, args...) }

// Package logging centralizes the plain-log.Printf convention already used
// throughout the teacher's internal/storage and internal/audio packages
// (e.g. storage.Database.debugLog) behind one package-level indirection, so
// tests can redirect output and every component tags its lines consistently
// instead of calling log.Printf ad hoc.
package logging

import (
	"log"
	"os"
)

var std = log.New(os.Stderr, "", log.LstdFlags)

// SetOutput swaps the destination logger, used by tests that want to
// capture or silence log output.
func SetOutput(l *log.Logger) {
	std = l
}

// Debugf logs a debug-tagged line when enabled is true, mirroring the
// teacher's debug-gated debugLog helper.
func Debugf(enabled bool, component, format string, args ...interface{}) {
	if !enabled {
		return
	}
	std.Printf("[%s] "+format, append([]interface{}{component}, args...)...)
}

// Errorf logs an error-tagged line unconditionally.
func Errorf(component, format string, args ...interface{}) {
	std.Printf("[%s] ERROR: "+format, append([]interface{}{component}, args...)...)
}

// Infof logs an info-tagged line unconditionally.
func Infof(component, format string, args ...interface{}) {
	std.Printf("[%s] "+format, append([]interface{}{component}, args...)...)
}

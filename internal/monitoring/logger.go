// Package monitoring carries the shared diagnostic logger for the filter
// pipeline. Packages log through monitoring.Logf so that batch jobs, the CLI
// and tests can redirect or mute diagnostics without plumbing a logger
// through every constructor.
package monitoring

import "log"

// Logf is the package-level diagnostic logger, defaulting to log.Printf.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. A nil argument installs a no-op
// logger, muting all diagnostics.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

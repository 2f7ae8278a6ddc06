// Package klog wraps go.uber.org/zap for the nucleus's diagnostics. The
// teacher emulator logs exceptions with the standard library's log
// package (see exception.go's "[m68k] exception ..." lines); a nucleus
// meant to run as a long-lived simulated kernel instead structures those
// same diagnostics as fields, the way the rcornwell-S370 manifest's
// go.uber.org/zap dependency implies its own logging does.
package klog

import "go.uber.org/zap"

// New builds a development-friendly sugared logger. Development mode
// favors readable console output over the JSON production encoder,
// matching a kernel simulator meant to be watched on a terminal rather
// than scraped by a log pipeline.
func New() *zap.SugaredLogger {
	l, err := zap.NewDevelopment()
	if err != nil {
		// zap.NewDevelopment only fails if stderr can't be opened for
		// writing; fall back to a no-op logger rather than panic.
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import (
	"os"

	"github.com/rs/zerolog"
)

// Log is the package-wide structured logger, configured the way the
// teacher's doc.go describes the library's own diagnostics: console output
// during development, swappable for any zerolog.Logger in production.
var Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}).
	With().Timestamp().Logger()

// defaultReportFailure logs an unhandled, expected failure's Cause at warn
// level (spec.md §7 "ReportFailure... default sink logs and continues").
func defaultReportFailure(fiberID FiberID, c Cause) {
	Log.Warn().
		Uint64("fiber_id", uint64(fiberID)).
		Str("cause", c.PrettyPrint()).
		Msg("zio: fiber failed")
}

// defaultReportFatal logs a Die (defect) Cause at error level before the
// process continues unwinding (spec.md §7 "Die... is still logged through
// ReportFatal even though it is never user-recoverable").
func defaultReportFatal(fiberID FiberID, c Cause) {
	Log.Error().
		Uint64("fiber_id", uint64(fiberID)).
		Str("cause", c.PrettyPrint()).
		Msg("zio: fiber died")
}

// parseLogLevel resolves a config string into a zerolog.Level.
func parseLogLevel(s string) (zerolog.Level, error) {
	return zerolog.ParseLevel(s)
}

// defaultFatal classifies a recovered panic value as process-fatal. Mirrors
// spec.md §7's carve-out for values that must bypass all user handlers —
// here restricted to runtime out-of-memory signals the Go runtime itself
// represents as a panic(runtime.Error) of this shape; everything else
// recovers as an ordinary Die.
func defaultFatal(v any) bool {
	type runtimeError interface {
		error
		RuntimeError()
	}
	_, ok := v.(runtimeError)
	return ok && v.(error).Error() == "runtime: out of memory"
}

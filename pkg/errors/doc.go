// Package errors provides the coded error type used across plugs.
//
// Every error raised by the core carries an ErrorCode, and every code
// belongs to a Kind (validation, io, build, parse). Concurrent fan-out
// never merges errors; callers receive the single error chosen by the
// lowest-index rule of package parallel.
package errors

// Package files implements the virtual file model plugs stages work on.
//
// A File has lazily read, memoized contents and a lazily resolved source
// map. Both use the same state machine (unread, reading, cached, failed):
// the first caller starts the read, callers arriving while it runs wait
// for it, a success is kept for good and a failure is retried on the
// next call.
//
// A Files container holds files under one directory in insertion order.
// Fork gives a stage its own copy-on-write view to add to, leaving the
// input untouched.
package files

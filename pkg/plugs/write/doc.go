// Package write is the only stage that writes to the filesystem. It writes
// every file of its input, optionally emitting source maps first, into the
// input directory or a directory below it.
package write

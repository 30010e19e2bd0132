// Package filesystem provides implementations of the types.FS interface:
// the OS filesystem and an afero adapter used for in-memory trees.
package filesystem

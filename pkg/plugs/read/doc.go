// Package read is the origin of most task pipes: it lists the files of a
// project directory that match a set of globs.
package read

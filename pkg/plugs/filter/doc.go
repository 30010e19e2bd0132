// Package filter selects files by glob. By default a file is matched by
// the path of the file it was derived from, so a pipe can keep the outputs
// of sources that live in a given directory.
package filter

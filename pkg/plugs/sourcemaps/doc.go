// Package sourcemaps writes source maps into files, inline as data URLs or
// as sibling .map files.
package sourcemaps

// Package sourcemap reads, composes and writes revision 3 source maps.
//
// Maps are decoded into per-line segments, traced through ancestor maps
// with Combine, and serialized by Encode with a fixed key order so that
// equal maps always produce identical bytes.
package sourcemap

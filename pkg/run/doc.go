// Package run holds the per-invocation context handed to every stage.
package run

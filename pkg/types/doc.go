// Package types defines the interfaces shared by plugs packages that must not
// depend on each other, most importantly the FS abstraction.
package types

// Package registry provides a generic, type-safe, name-indexed registry.
// Plug constructors are installed into one from init() functions.
package registry

// Package glob compiles shell-style globs into path predicates and walks
// directories with them. Patterns are translated to regular expressions
// with mvdan.cc/sh/v3/pattern.
package glob

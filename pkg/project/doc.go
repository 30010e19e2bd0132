// Package project loads build scripts.
//
// A build script is a Starlark file, build.star by default, declaring
// tasks:
//
//	js = read("src", "**/*.js").filter("**/*.js").write("dist")
//	task("js", js, desc="Copy scripts")
//	task("default", deps=["js"])
//
// read() starts a pipe and every installed plug is a method of pipes.
// Positional arguments are passed to the plug as is; keyword arguments
// become its options. info(), warn(), getenv(), plugs(), OS and ARCH are
// also predeclared.
package project

// Package pipe composes plugs into pipelines.
//
// A pipe is an immutable chain: Plug and Use return a new pipe and never
// change the receiver, so a pipe can be shared and extended freely. A
// PlugPipe is itself a Plug and nests inside other pipes. A TaskPipe starts
// from an Origin and only runs.
//
// Stages run strictly in order. The first failing stage stops the pipe and
// its error is returned unchanged; later stages never run.
//
// Plugs are installed by name once, usually from an init function:
//
//	var Filter = pipe.MustInstall("filter", newFilter)
//
// after which pipe.New().Use("filter", "**/*.js") and Filter("**/*.js")
// build the same pipe.
package pipe

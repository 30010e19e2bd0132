// Package paths resolves and validates the absolute paths plugs works with.
//
// Every file in a container is keyed by an absolute path that must stay
// under the container's directory; Resolve enforces that and yields the
// matching relative path in one step.
package paths

// Package testutil provides project fixtures for plugs tests.
//
// A fixture is a project tree described inline as a map of slash separated
// paths to contents, created either on disk under t.TempDir() or in an
// in-memory FS.
package testutil

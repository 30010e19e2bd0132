// Package config loads the plugs configuration.
//
// Layers are merged with koanf, later ones winning: the embedded
// defaults.toml, the project file (plugs.toml, .plugs.toml or plugs.yaml),
// PLUGS_* environment variables, then explicit overrides from the command
// line. The resulting Config is passed explicitly to the run; nothing here
// keeps global state.
package config

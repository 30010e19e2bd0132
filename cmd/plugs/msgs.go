package plugs

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Run file-processing build tasks"
	MsgRunShort        = "Run build tasks"
	MsgTasksShort      = "List the tasks of the build script"
	MsgPlugsShort      = "List the installed plugs"
	MsgConfigShort     = "Print the effective configuration"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate man page"

	// Status messages
	MsgRunDone       = "Build succeeded in %s"
	MsgTaskItem      = "  %s"
	MsgTaskDesc      = "  %s"
	MsgNoTasks       = "No tasks declared in %s"
	MsgAvailable     = "Available tasks:"
	MsgInstalled     = "Installed plugs:"
	MsgVersionFormat = "plugs version %s\n  commit: %s\n  built:  %s\n"

	// Error messages
	MsgErrLoadConfig  = "failed to load configuration: %w"
	MsgErrLoadProject = "failed to load build script: %w"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDir     = "Project directory (default is the current directory)"
	MsgFlagConfig  = "Configuration file (default is plugs.toml in the project directory)"
	MsgFlagNoColor = "Disable colored output"
	MsgFlagFormat  = "Output format: toml or yaml"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/run-long.txt
	msgRunLongRaw string
	MsgRunLong    = strings.TrimSpace(msgRunLongRaw)

	//go:embed msgs/run-example.txt
	msgRunExampleRaw string
	MsgRunExample    = strings.TrimRight(msgRunExampleRaw, "\n")

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)
)

package plugs

import (
	"fmt"
	"io"

	"github.com/arthur-debert/plugs/internal/version"
	"github.com/arthur-debert/plugs/pkg/config"
	"github.com/arthur-debert/plugs/pkg/errors"
	"github.com/arthur-debert/plugs/pkg/logging"
	"github.com/arthur-debert/plugs/pkg/paths"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	// Installs the built-in plugs.
	_ "github.com/arthur-debert/plugs/pkg/plugs"
)

// skipSetup marks commands that run without loading the configuration.
const skipSetup = "plugs/skip-setup"

// session is the per-invocation state built before a command runs.
type session struct {
	root   string
	cfg    *config.Loaded
	logger zerolog.Logger
	closer io.Closer
	styles styles
}

func (s *session) close() {
	if s.closer != nil {
		_ = s.closer.Close()
		s.closer = nil
	}
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity  int
		dir        string
		configFile string
		noColor    bool
	)
	s := &session{logger: zerolog.Nop(), styles: newStyles(false)}

	rootCmd := &cobra.Command{
		Use:     "plugs",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipSetup] != "" {
				return nil
			}
			return s.setup(dir, configFile, verbosity, noColor, cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			s.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// If we get here, no subcommand was provided
			// Show help but return an error to indicate incorrect usage
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&dir, "dir", "C", "", MsgFlagDir)
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, MsgFlagNoColor)

	// Define command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	// Add all commands
	rootCmd.AddCommand(newRunCmd(s))
	rootCmd.AddCommand(newTasksCmd(s))
	rootCmd.AddCommand(newPlugsCmd(s))
	rootCmd.AddCommand(newConfigCmd(s))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd(rootCmd))

	return rootCmd
}

// setup resolves the project directory, loads the configuration and builds
// the logger. Flags given on the command line override every other layer.
func (s *session) setup(dir, configFile string, verbosity int, noColor bool, stderr io.Writer) error {
	if dir == "" {
		dir = "."
	}
	root, err := paths.Abs(dir)
	if err != nil {
		return err
	}

	overrides := map[string]interface{}{}
	if verbosity > 0 {
		overrides["log.verbosity"] = verbosity
	}
	if noColor {
		overrides["log.no_color"] = true
	}

	cfg, err := config.Load(config.LoadOptions{
		Dir:       root,
		File:      configFile,
		Overrides: overrides,
	})
	if err != nil {
		return fmt.Errorf(MsgErrLoadConfig, err)
	}

	logFile := cfg.Log.File
	if logFile == "default" {
		if logFile, err = logging.DefaultLogFile(); err != nil {
			return errors.Wrap(err, errors.ErrConfigLoad, "failed to locate the log file")
		}
	}
	logger, closer, err := logging.New(logging.Options{
		Verbosity: cfg.Log.Verbosity,
		NoColor:   cfg.Log.NoColor,
		LogFile:   logFile,
		Output:    stderr,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigLoad, "failed to set up logging")
	}

	s.root = root
	s.cfg = cfg
	s.logger = logger
	s.closer = closer
	s.styles = newStyles(cfg.Log.NoColor)
	logger.Debug().Str("root", root).Str("config", cfg.File).Msg("Configuration loaded")
	return nil
}

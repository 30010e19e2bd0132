package plugs

import (
	"fmt"

	"github.com/arthur-debert/plugs/pkg/filesystem"
	"github.com/arthur-debert/plugs/pkg/lock"
	"github.com/arthur-debert/plugs/pkg/project"
	"github.com/arthur-debert/plugs/pkg/run"
	"github.com/arthur-debert/plugs/pkg/types"
	"github.com/spf13/cobra"
)

func newRunCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "run [task...]",
		Short:   MsgRunShort,
		Long:    MsgRunLong,
		Example: MsgRunExample,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = []string{s.cfg.Project.DefaultTask}
			}

			if s.cfg.Project.Lock {
				l, err := lock.Acquire(s.root)
				if err != nil {
					return err
				}
				defer func() {
					if err := l.Unlock(); err != nil {
						s.logger.Warn().Err(err).Msg("Failed to release project lock")
					}
				}()
			}

			fsys := filesystem.NewOS()
			p, err := loadProject(cmd, s, fsys)
			if err != nil {
				return err
			}

			r := run.New(s.cfg.Config, s.logger, fsys, s.root)
			if _, err := p.Run(cmd.Context(), r, names...); err != nil {
				return err
			}

			msg := fmt.Sprintf(MsgRunDone, r.FormatElapsed())
			fmt.Fprintln(cmd.OutOrStdout(), s.styles.render(s.styles.success, msg))
			return nil
		},
	}
}

func loadProject(cmd *cobra.Command, s *session, fsys types.FS) (*project.Project, error) {
	p, err := project.Load(cmd.Context(), fsys, s.root, project.LoadOptions{
		File:   s.cfg.Project.BuildFile,
		Logger: s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadProject, err)
	}
	return p, nil
}

package plugs

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/plugs/pkg/config"
	"github.com/arthur-debert/plugs/pkg/filesystem"
	"github.com/arthur-debert/plugs/pkg/pipe"
	"github.com/spf13/cobra"
)

func newTasksCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "tasks",
		Short:   MsgTasksShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, s, filesystem.NewOS())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tasks := p.Tasks()
			if len(tasks) == 0 {
				fmt.Fprintf(out, MsgNoTasks+"\n", p.File())
				return nil
			}

			fmt.Fprintln(out, s.styles.render(s.styles.title, MsgAvailable))
			for _, t := range tasks {
				line := fmt.Sprintf(MsgTaskItem, s.styles.render(s.styles.name, t.Name))
				if len(t.Deps) > 0 {
					line += s.styles.render(s.styles.faint, " ("+strings.Join(t.Deps, ", ")+")")
				}
				fmt.Fprintln(out, line)
				if t.Desc != "" {
					fmt.Fprintf(out, "  "+MsgTaskDesc+"\n", t.Desc)
				}
			}
			return nil
		},
	}
}

func newPlugsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "plugs",
		Short:   MsgPlugsShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, s.styles.render(s.styles.title, MsgInstalled))
			for _, name := range pipe.Installed() {
				fmt.Fprintf(out, MsgTaskItem+"\n", s.styles.render(s.styles.name, name))
			}
			return nil
		},
	}
}

func newConfigCmd(s *session) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Dump(s.cfg.Config, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", config.FormatTOML, MsgFlagFormat)
	return cmd
}

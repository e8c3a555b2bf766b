package cmd

import (
	"fmt"

	"github.com/foomo/navserver/pkg/render"
	"github.com/foomo/navserver/pkg/repo"
	"github.com/spf13/cobra"
)

func NewRenderCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "render <file|url>",
		Short: "Render navigation trees as html, markdown, js, json or text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := render.Format(outputFormatFlag(v))
			srcFormat, err := sourceFormat(v)
			if err != nil {
				return err
			}
			trees, err := repo.Load(cmd.Context(), nil, args[0], srcFormat)
			if err != nil {
				return fmt.Errorf("failed to load %q: %w", args[0], err)
			}

			w := cmd.OutOrStdout()
			for i, tree := range trees {
				if i > 0 {
					_, _ = fmt.Fprintln(w)
				}
				if err := render.Render(format, w, tree); err != nil {
					return fmt.Errorf("failed to render tree %q: %w", tree.Name, err)
				}
			}
			if format == render.FormatJS || format == render.FormatJSON {
				_, _ = fmt.Fprintln(w)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	addSourceFormatFlag(flags, v)
	addOutputFormatFlag(flags, v)

	return cmd
}

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/foomo/navserver/pkg/lint"
	"github.com/foomo/navserver/pkg/repo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrLintIssues lint found issues in at least one tree
var ErrLintIssues = errors.New("lint found issues")

func NewLintCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "lint <file|url>",
		Short: "Check navigation trees and the pages they point at",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := zap.L()
			format, err := sourceFormat(v)
			if err != nil {
				return err
			}
			trees, err := repo.Load(cmd.Context(), nil, args[0], format)
			if err != nil {
				return fmt.Errorf("failed to load %q: %w", args[0], err)
			}

			linter, closeLinter, err := newLinter(cmd.Context(), v, l)
			if err != nil {
				return err
			}
			defer closeLinter() //nolint:errcheck

			var reports []*lint.Report
			for _, tree := range trees {
				report, err := linter.Lint(cmd.Context(), tree)
				if err != nil {
					return fmt.Errorf("failed to lint tree %q: %w", tree.Name, err)
				}
				reports = append(reports, report)
			}
			return printReports(cmd.OutOrStdout(), reports)
		},
	}

	flags := cmd.Flags()
	addSourceFormatFlag(flags, v)
	addMaxDepthFlag(flags, v)
	addPagesFlag(flags, v)

	return cmd
}

func printReports(w io.Writer, reports []*lint.Report) error {
	failed := false
	for _, report := range reports {
		_, _ = fmt.Fprintf(w, "%s: %d nodes, %d pages, %d issue(s)\n", report.Tree, report.Nodes, report.Pages, len(report.Issues))
		for _, issue := range report.Issues {
			_, _ = fmt.Fprintf(w, "  %s\n", issue)
		}
		failed = failed || !report.OK()
	}
	if failed {
		return ErrLintIssues
	}
	return nil
}

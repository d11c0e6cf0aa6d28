package cli

import (
	"context"
	"fmt"

	"github.com/example/wordbox/internal/report"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "report",
		Short: "Show learning progress",
		Args:  cobra.NoArgs,
		RunE:  runReport,
	})
}

func runReport(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store) error {
		r, err := report.NewService(s.words, s.stats, s.quiz).Build(ctx)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), r.Format())
		return nil
	})
}

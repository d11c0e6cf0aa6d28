package cli

import (
	"context"
	"fmt"

	"github.com/example/wordbox/internal/excel"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import words from an .xlsx or .csv file",
		Long:  "Import words from a spreadsheet. Column A holds the English word, column B the Persian meaning, and the first row is a header.",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}

	cmd.Flags().String("sheet", "", "Sheet name (default: first sheet)")
	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	sheet, _ := cmd.Flags().GetString("sheet")

	return withStore(cmd, func(ctx context.Context, s *store) error {
		cfg := excel.DefaultImportConfig()
		cfg.FilePath = args[0]
		cfg.SheetName = sheet

		result, err := excel.NewImporter(s.words).ImportFile(ctx, cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "processed %d, added %d, skipped %d\n", result.TotalProcessed, result.Created, result.Skipped)
		for _, e := range result.Errors {
			fmt.Fprintln(out, e)
		}
		return nil
	})
}

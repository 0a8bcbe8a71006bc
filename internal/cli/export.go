package cli

import (
	"fmt"

	"github.com/klokku/pocketbudget/internal/app"
	"github.com/klokku/pocketbudget/pkg/export"
	"github.com/klokku/pocketbudget/pkg/stats"
	"github.com/spf13/cobra"
)

type ExportOptions struct {
	*RootOptions
	Format string
	OutDir string
	Sheets bool
	filter filterFlags
}

func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered ledger to CSV, JSON or Google Sheets",
		Long: `Export the filtered ledger.

The file is written to --out as expenses-YYYY-MM-DD.csv or .json.
With --sheets the rows are appended to the configured spreadsheet instead.

Example:
  pocketbudget export --format json --category Food --from 2024-01-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "csv", "output format (csv|json)")
	cmd.Flags().StringVar(&opts.OutDir, "out", ".", "directory to write the export file to")
	cmd.Flags().BoolVar(&opts.Sheets, "sheets", false, "append to Google Sheets instead of writing a file")
	opts.filter.register(cmd)

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions) error {
	format, err := export.ParseFormat(opts.Format)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	return withDependencies(ctx, opts.RootOptions, func(deps *app.Dependencies) error {
		filter, err := stats.ParseFilter(opts.filter.query(), deps.Registry)
		if err != nil {
			return err
		}
		expenses := deps.StatsService.FilteredExpenses(ctx, filter)

		if opts.Sheets {
			if deps.SheetsExporter == nil {
				return export.ErrSheetsNotConfigured
			}
			rows, err := deps.SheetsExporter.Append(ctx, expenses)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Appended %d rows to Google Sheets\n", rows)
			return nil
		}

		path, err := export.WriteFile(opts.OutDir, deps.StatsService.Today(), format, expenses)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d expenses to %s\n", len(expenses), path)
		return nil
	})
}

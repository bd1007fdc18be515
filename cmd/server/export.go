package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	exportOut     string
	exportArchive bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the stock matrix as a spreadsheet",
	Long: `Export renders one row per item and one column per location into an
XLSX workbook.

Example:
  lagerapp export
  lagerapp export --out /tmp/stock.xlsx
  lagerapp export --archive`,
	RunE: runExport,
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the stock matrix as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := ledger.aggregator.Build(cmd.Context())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(m.Map())
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default: configured file name in the working directory)")
	exportCmd.Flags().BoolVar(&exportArchive, "archive", false, "store the workbook in the configured archive instead")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportArchive {
		where, err := ledger.exporter.Archive(cmd.Context())
		if err != nil {
			return fmt.Errorf("archive export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Archived export: %s\n", where)
		return nil
	}

	data, err := ledger.exporter.Export(cmd.Context())
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	out := exportOut
	if out == "" {
		out = ledger.exporter.FileName()
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", out, len(data))
	return nil
}

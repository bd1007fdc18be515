package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamudi896/LagerAppENV/internal/core/domain"
)

var (
	stockLocation  int64
	stockItem      int64
	stockDelta     int64
	stockRequestID string
)

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Change or show stock quantities",
}

var stockAdjustCmd = &cobra.Command{
	Use:   "adjust",
	Short: "Apply a change and floor the result at zero",
	Example: `  lagerapp stock adjust --location 1 --item 3 --delta -5
  lagerapp stock adjust --location 1 --item 3 --delta 10 --request-id inv-2024-07`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStockChange(cmd, domain.AdjustBounded)
	},
}

var stockAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Apply a change without a floor",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStockChange(cmd, domain.AdjustUnbounded)
	},
}

var stockShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stock of one location grouped by category",
	RunE: func(cmd *cobra.Command, args []string) error {
		sheet, err := ledger.ledger.LocationSheet(cmd.Context(), stockLocation)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s\n", sheet.Location.Name)
		for _, g := range sheet.Groups {
			fmt.Fprintf(w, "  %s\n", g.Category)
			for _, iq := range g.Items {
				fmt.Fprintf(w, "    %-30s %d\n", iq.Item.Name, iq.Quantity)
			}
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{stockAdjustCmd, stockAddCmd} {
		c.Flags().Int64Var(&stockLocation, "location", 0, "location id (required)")
		c.Flags().Int64Var(&stockItem, "item", 0, "item id (required)")
		c.Flags().Int64Var(&stockDelta, "delta", 0, "signed quantity change")
		c.Flags().StringVar(&stockRequestID, "request-id", "", "deduplication id, needs redis")
		_ = c.MarkFlagRequired("location")
		_ = c.MarkFlagRequired("item")
	}
	stockShowCmd.Flags().Int64Var(&stockLocation, "location", 0, "location id (required)")
	_ = stockShowCmd.MarkFlagRequired("location")

	stockCmd.AddCommand(stockAdjustCmd)
	stockCmd.AddCommand(stockAddCmd)
	stockCmd.AddCommand(stockShowCmd)
}

func runStockChange(cmd *cobra.Command, mode domain.AdjustMode) error {
	qty, err := ledger.ledger.ApplyOnce(cmd.Context(), stockRequestID, mode, stockLocation, stockItem, stockDelta)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "New quantity: %d\n", qty)
	return nil
}

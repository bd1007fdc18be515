// Package main provides the lagerapp service and its command line.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hamudi896/LagerAppENV/internal/config"
)

var (
	// configFile is set by the --config flag.
	configFile string

	// ledger is the wired application, built by PersistentPreRunE.
	ledger *app
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs the command line and closes the app afterwards. cobra skips
// PersistentPostRunE when RunE fails, so the close happens here as well.
func execute() error {
	err := rootCmd.Execute()
	return errors.Join(err, closeApp())
}

var rootCmd = &cobra.Command{
	Use:   "lagerapp",
	Short: "Lagerapp tracks stock of items across storage locations",
	Long: `Lagerapp keeps a ledger of item quantities per storage location,
serves it over HTTP and gRPC and exports the stock matrix as a spreadsheet.`,
	SilenceUsage:      true,
	PersistentPreRunE: initApp,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeApp()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./config.yaml or ./config/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(stockCmd)
}

// initApp loads the configuration and wires the store and services.
func initApp(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger(cfg.Log, os.Stderr)

	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	ledger = a
	return nil
}

// closeApp releases the app once; later calls are no-ops.
func closeApp() error {
	if ledger == nil {
		return nil
	}
	err := ledger.Close()
	ledger = nil
	return err
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const serviceName = "checkout-gateway"

var Version = "dev"

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:     "checkout-gateway",
		Short:   "Payment gateway API: orders, UPI and card payments, hosted checkout endpoints",
		Version: Version,
		// Running the binary with no subcommand starts the server.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment from this file instead of ./.env")

	rootCmd.AddCommand(serveCmd(&envFile))
	rootCmd.AddCommand(migrateCmd(&envFile))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*envFile)
		},
	}
}

func migrateCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and seed the test merchant",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(*envFile)
		},
	}
}

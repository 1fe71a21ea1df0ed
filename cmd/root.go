package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "onit-markets",
	Short: "Onit prediction markets client",
	Long: `Typed client for the Onit parametric prediction market ledger.

Fetches and paginates markets, resolves bet calldata, drives the two-phase
bet submission flow, creates markets, and runs the credential-forwarding
proxy used by browser front ends.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Optional .env for local development; real deployments set the
		// environment directly.
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

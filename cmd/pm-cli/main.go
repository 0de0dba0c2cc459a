package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pm-cli",
	Short: "Command-line client for the PM assistant",
	Long: `pm-cli talks to a running PM assistant over HTTP.

Examples:
  pm-cli chat "list backend employees"
  pm-cli chat --session sess_123 "assign the invoice API to Alice"
  pm-cli confirm --session sess_123 --token cfm_abc
  pm-cli confirm --session sess_123 --token cfm_abc --reject
  pm-cli history --session sess_123
  pm-cli repl`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	serverURL   string
	bearerToken string
	sessionID   string
	jsonOutput  bool
)

func init() {
	defaultURL := os.Getenv("PM_ASSISTANT_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8090"
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultURL, "Assistant base URL (env PM_ASSISTANT_URL)")
	rootCmd.PersistentFlags().StringVar(&bearerToken, "auth-token", os.Getenv("PM_ASSISTANT_TOKEN"), "Bearer token (env PM_ASSISTANT_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print raw JSON responses")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(confirmCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(replCmd)
}

func newClientFromFlags() *apiClient {
	return newAPIClient(serverURL, bearerToken)
}

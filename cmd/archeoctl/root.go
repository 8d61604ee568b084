package main

import (
	"os"

	"github.com/spf13/cobra"

	"archeohub-backend/internal/client"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:           "archeoctl",
	Short:         "Command-line client for the ArcheoHub API",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	def := os.Getenv("ARCHEOHUB_SERVER")
	if def == "" {
		def = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", def, "base URL of the ArcheoHub server")
}

// newClient is swapped in tests.
var newClient = func() *client.Client {
	return client.New(serverURL)
}

// vm-wizard - interactive CLI for provisioning VMs through the provizor API
package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var serverURL string
var username string
var password string

var rootCmd = &cobra.Command{
	Use:           "vm-wizard",
	Short:         "Create virtual machines through the provisioning API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := login()
		if err != nil {
			return err
		}
		return runWizard(cmd.Context(), client)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080",
		"Base URL of the provisioning API")
	rootCmd.PersistentFlags().StringVar(&username, "username", "", "API username (prompted when empty)")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "API password (prompted when empty)")
}

func main() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

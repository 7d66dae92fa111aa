package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odontoprint/gapheal/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gapheald",
		Short: "Gapheal daemon and CLI",
		Long:  "Gapheal daemon for running the knowledge-gap healing API server and managing API keys",
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.GenerateCmd())
	rootCmd.AddCommand(cli.APIKeyCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

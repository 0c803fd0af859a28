package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "signup",
	Short: "Crumble Bakery launch signup service",
	Long:  `The signup service behind the Crumble Bakery launch page: email validation, submission tracking and rate limiting over a pluggable key-value store.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagOffline bool
)

var rootCmd = &cobra.Command{
	Use:          "shopper",
	Short:        "Shopping budget tracker",
	Long:         "Track a shopping list against a budget, keep a history of purchases and compare prices between trips.",
	SilenceUsage: true,
	RunE:         runList,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default is the shopper config directory)")
	rootCmd.PersistentFlags().BoolVar(&flagOffline, "offline", false, "Skip sign in restore and stay a guest")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

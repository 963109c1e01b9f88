// Package cli implements the dealgrove command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dealgrove/dealgrove/internal/daemon"
)

// Version is stamped at build time via -ldflags.
var Version = "0.1.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "dealgrove",
	Short: "Reputation-gated coupon marketplace",
	Long: `dealgrove runs a coupon marketplace where publishing and voting cost
reputation. Accounts earn an initial grant, spend it to publish coupons or
cast votes, and every spend is atomic with the write it pays for.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the dealgrove version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "dealgrove %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", daemon.DefaultConfigPath(), "Path to the TOML config file")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

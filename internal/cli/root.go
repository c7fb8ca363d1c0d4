package cli

import (
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time
	Version = "dev"

	// Workdir is the working directory
	Workdir string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "space-dns",
	Short: "space-dns - Caching DNS forwarder",
	Long: `space-dns is a small caching DNS forwarder. It answers A/AAAA queries
from a bounded, TTL-aware record cache and forwards everything else to an
upstream resolver.

Features:
  • Bounded record cache with least-recently-confirmed eviction
  • TTL-faithful answers (remaining TTL, never expired records)
  • Periodic expiry sweep alongside lazy expiry on lookup
  • Zero-config mode with optional yaml configuration`,
	Version: Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&Workdir, "workdir", "w", ".", "working directory")

	// Add subcommands
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newQueryCommand())
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"raybands/internal/logging"
	"raybands/internal/store"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "raybands",
	Short: "Power-band extraction from a live optical ray-trace session",
	Long: "Raybands drives a running ray-trace session: it snapshots the traced\n" +
		"ray paths, partitions them into cumulative-power bands, and exports one\n" +
		"screenshot plus one CSV per band, restoring ray visibility on every exit.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		level, err := logging.ParseLevel(rootFlags.logLevel)
		if err != nil {
			return err
		}
		logging.Init(level, rootFlags.logFormat)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(bandsCmd)
	rootCmd.AddCommand(propsCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

// defaultDBPath resolves the run-history DB path: RAYBANDS_DB when set,
// otherwise the store default. Flags still override.
func defaultDBPath() string {
	if p := os.Getenv("RAYBANDS_DB"); p != "" {
		return p
	}
	return store.DefaultDBPath
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

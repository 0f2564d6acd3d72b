// Command ekoscanner is the terminal shell: scan or type a barcode, see the
// product and a short sustainability summary, and revisit earlier scans.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	frameDir string
	logFile  string
)

var rootCmd = &cobra.Command{
	Use:   "ekoscanner",
	Short: "Scan groceries and read a short sustainability summary",
	Long: `Ekoscanner looks up a barcode in OpenFoodFacts and asks the summary relay
for a short sustainability description of the product.

Without a subcommand it starts the interactive shell. Barcodes are typed in, or
read from camera frames dropped into --frame-dir.`,
	SilenceUsage: true,
	RunE:         runShell,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file (default: config log.file)")
	rootCmd.Flags().StringVar(&frameDir, "frame-dir", "", "directory a capture tool writes camera frames into (default: config scanner.frame_dir)")

	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

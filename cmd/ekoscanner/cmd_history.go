package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearHistory bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List scanned barcodes, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&clearHistory, "clear", false, "remove every entry")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()

	if clearHistory {
		if err := a.history.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "Historiken är rensad.")
		return nil
	}

	entries := a.history.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(out, "Ingen historik ännu.")
		return nil
	}
	for i, code := range entries {
		fmt.Fprintf(out, "%2d. %s\n", i+1, code)
	}
	return nil
}

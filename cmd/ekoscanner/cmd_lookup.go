package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/ekoscanner/ekoscanner/internal/domain"
	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <barcode>",
	Short: "Look up one barcode and print the product and summary",
	Long: `Runs a single lookup without the interactive shell. The barcode is
recorded in the scan history like a manual entry.

Example:
  ekoscanner lookup 7311870010970`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func runLookup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	state, err := a.pipeline.RunLookup(ctx, args[0])
	printState(cmd.OutOrStdout(), state)
	if err != nil {
		return errors.New(domain.UserMessage(err))
	}
	return nil
}

func printState(w io.Writer, state domain.LookupState) {
	if state.Product != nil {
		fmt.Fprintf(w, "Streckkod:  %s\n", state.Code)
		fmt.Fprintf(w, "Produkt:    %s\n", state.Product.DisplayName())
		fmt.Fprintf(w, "Varumärke:  %s\n", state.Product.DisplayBrand())
		fmt.Fprintf(w, "Kategorier: %s\n", state.Product.DisplayCategories())
		if state.Product.ImageURL != "" {
			fmt.Fprintf(w, "Bild:       %s\n", state.Product.ImageURL)
		}
	}
	if state.Phase == domain.PhaseSummarized {
		fmt.Fprintf(w, "\n%s\n", state.Summary)
	}
}

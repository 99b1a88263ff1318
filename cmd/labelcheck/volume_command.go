package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/labelcheck/internal/compare"
	"github.com/kiranshivaraju/labelcheck/pkg/units"
)

type volumeResult struct {
	Input       string   `json:"input"`
	Milliliters *float64 `json:"milliliters"`
}

func newVolumeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "volume <amount>...",
		Short: "Convert volume expressions such as \"1.5 L\" or \"12 fl oz\" to milliliters",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]volumeResult, 0, len(args))
			unreadable := 0
			for _, arg := range args {
				r := volumeResult{Input: arg}
				if ml, ok := units.ToMilliliters(arg); ok {
					r.Milliliters = &ml
				} else {
					unreadable++
				}
				results = append(results, r)
			}

			if opts.jsonOutput {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					ml := "?"
					if r.Milliliters != nil {
						ml = compare.FormatNumber(*r.Milliliters)
					}
					rows = append(rows, []string{r.Input, ml})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Input", "ml"}, rows, []columnAlignment{alignLeft, alignRight}))
			}

			if unreadable > 0 {
				return fmt.Errorf("%d of %d inputs could not be read as a volume", unreadable, len(args))
			}
			return nil
		},
	}
}

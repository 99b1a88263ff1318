package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/labelcheck/pkg/models"
)

func newCompareCommand(opts *options) *cobra.Command {
	var labelText string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Verify claimed fields against label text from --text or stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			claim, err := opts.claim()
			if err != nil {
				return err
			}
			engine, err := opts.engine()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("text") {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				labelText = string(data)
			}

			ocr := models.OcrResult{RawText: labelText}
			return printResult(cmd, opts, claim, ocr, engine.Compare(ocr, claim), false)
		},
	}
	cmd.Flags().StringVar(&labelText, "text", "", "Label text to check; read from stdin when omitted")
	addClaimFlags(cmd, opts)
	return cmd
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCheckCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <image>",
		Short: "OCR a label image and verify the claimed fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claim, err := opts.claim()
			if err != nil {
				return err
			}
			engine, err := opts.engine()
			if err != nil {
				return err
			}

			image, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			client, err := newOCRClient(opts.ocr, cliLogger(cmd))
			if err != nil {
				return fmt.Errorf("create OCR client: %w", err)
			}
			text, err := client.ExtractText(cmd.Context(), image)
			if err != nil {
				return fmt.Errorf("OCR %s: %w", client.Name(), err)
			}

			return printResult(cmd, opts, claim, text, engine.Compare(text, claim), true)
		},
	}
	addClaimFlags(cmd, opts)
	addOCRFlags(cmd, opts)
	return cmd
}

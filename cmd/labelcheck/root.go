package main

import (
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/labelcheck/internal/compare"
	"github.com/kiranshivaraju/labelcheck/internal/config"
	"github.com/kiranshivaraju/labelcheck/internal/ocr"
	"github.com/kiranshivaraju/labelcheck/internal/validation"
	"github.com/kiranshivaraju/labelcheck/pkg/models"
)

// errLabelFailed is returned when at least one claim could not be verified.
// The report has already been printed, so main only sets the exit code.
var errLabelFailed = errors.New("label failed verification")

// newOCRClient is swapped out in tests.
var newOCRClient = ocr.NewClient

type options struct {
	jsonOutput bool
	netMode    string
	ocr        config.OCRConfig

	brand string
	class string
	abv   string
	net   string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "labelcheck",
		Short:         "Verify alcohol label claims against label text",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&opts.jsonOutput, "json", false, "Print results as JSON")
	flags.StringVar(&opts.netMode, "net-contents-mode", string(compare.NetContentsFuzzy), "Net contents check: fuzzy or volume")

	rootCmd.AddCommand(newCheckCommand(opts))
	rootCmd.AddCommand(newCompareCommand(opts))
	rootCmd.AddCommand(newVolumeCommand(opts))

	return rootCmd
}

// addClaimFlags registers the claim fields shared by check and compare.
func addClaimFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.brand, "brand", "", "Claimed brand name (required)")
	cmd.Flags().StringVar(&opts.class, "class", "", "Claimed product class (required)")
	cmd.Flags().StringVar(&opts.abv, "abv", "", "Claimed alcohol content, e.g. 45 or 45% (required)")
	cmd.Flags().StringVar(&opts.net, "net", "", "Claimed net contents, e.g. 750 ml")
}

func (o *options) claim() (models.Claim, error) {
	return validation.ParseClaim(validation.ClaimInput{
		BrandName:      o.brand,
		ProductClass:   o.class,
		AlcoholContent: o.abv,
		NetContents:    o.net,
	})
}

func (o *options) engine() (*compare.Engine, error) {
	mode, err := compare.ParseNetContentsMode(o.netMode)
	if err != nil {
		return nil, err
	}
	return compare.NewEngine(mode), nil
}

func addOCRFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.ocr.Provider, "ocr-provider", "tesseract", "OCR backend: tesseract or http")
	cmd.Flags().StringVar(&opts.ocr.TesseractPath, "tesseract-path", "tesseract", "Path to the tesseract binary")
	cmd.Flags().StringVar(&opts.ocr.TesseractLang, "lang", "eng", "Tesseract language")
	cmd.Flags().StringVar(&opts.ocr.TessdataDir, "tessdata-dir", "", "Tesseract tessdata directory")
	cmd.Flags().BoolVar(&opts.ocr.TSVConfidence, "confidence", false, "Ask tesseract for a mean word confidence")
	cmd.Flags().StringVar(&opts.ocr.HTTPURL, "ocr-url", "", "Remote OCR endpoint for the http provider")
	cmd.Flags().DurationVar(&opts.ocr.Timeout, "ocr-timeout", 60*time.Second, "OCR timeout")
}

// cliLogger keeps OCR client logs off stdout so JSON output stays parseable.
func cliLogger(cmd *cobra.Command) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
}

package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/labelcheck/internal/compare"
	"github.com/kiranshivaraju/labelcheck/pkg/models"
)

// report is the JSON shape printed by check and compare.
type report struct {
	Success       bool           `json:"success"`
	Claim         models.Claim   `json:"claim"`
	Issues        models.Issues  `json:"issues"`
	Confidence    map[string]int `json:"confidence"`
	OCRConfidence *float64       `json:"ocrConfidence,omitempty"`
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult renders the verdict and returns errLabelFailed when any field
// failed, so the process exits non-zero.
func printResult(cmd *cobra.Command, opts *options, claim models.Claim, ocr models.OcrResult, res compare.Result, withOCR bool) error {
	if opts.jsonOutput {
		out := report{
			Success:    res.Success,
			Claim:      claim,
			Issues:     res.Issues,
			Confidence: res.Confidence,
		}
		if withOCR {
			c := ocr.Confidence
			out.OCRConfidence = &c
		}
		if err := writeJSON(cmd, out); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, renderTable(
			[]string{"Field", "Claimed", "Result", "Score", "Issue"},
			resultRows(claim, res),
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		))
		if withOCR {
			fmt.Fprintf(w, "OCR confidence: %.1f\n", ocr.Confidence)
		}
		if res.Success {
			fmt.Fprintln(w, "PASS")
		} else {
			fmt.Fprintln(w, "FAIL")
		}
	}

	if !res.Success {
		return errLabelFailed
	}
	return nil
}

func resultRows(claim models.Claim, res compare.Result) [][]string {
	fields := []struct {
		key     string
		label   string
		claimed string
	}{
		{models.FieldBrandName, "Brand name", claim.BrandName},
		{models.FieldProductClass, "Product class", claim.ProductClass},
		{models.FieldAlcoholContent, "Alcohol content", compare.FormatNumber(claim.AlcoholContent) + "%"},
		{models.FieldNetContents, "Net contents", claim.NetContents},
	}

	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		if f.claimed == "" {
			continue
		}
		status := "ok"
		issue, failed := res.Issues[f.key]
		if failed {
			status = "fail"
		}
		score := "-"
		if c, ok := res.Confidence[f.key]; ok {
			score = strconv.Itoa(c)
		}
		rows = append(rows, []string{f.label, f.claimed, status, score, issue})
	}
	return rows
}

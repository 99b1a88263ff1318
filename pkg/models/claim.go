// Package models contains shared data models used across the LabelCheck codebase.
package models

// Claim is the set of attribute values a submitter asserts are printed on a label.
// The label image itself is never part of a stored Claim; it is handed to the
// OCR client once and then dropped.
type Claim struct {
	BrandName      string  `db:"brand_name"      json:"brandName"`
	ProductClass   string  `db:"product_class"   json:"productClass"`
	AlcoholContent float64 `db:"alcohol_content" json:"alcoholContent"`
	NetContents    string  `db:"net_contents"    json:"netContents,omitempty"`
}

// OcrResult is the raw recognized text returned by an OCR client.
// Confidence (0..100) is informational and never gates matching.
type OcrResult struct {
	RawText    string  `json:"rawText"`
	Confidence float64 `json:"confidence"`
}

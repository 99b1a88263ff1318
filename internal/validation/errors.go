package validation

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("validation job not found")
)

// GeneralFailureMessage is the only detail a caller sees for a failed job.
const GeneralFailureMessage = "Processing failed due to an internal error"

package importer

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format: use .xlsx or .csv")
	// ErrDuplicateEmail is returned by a Sink when the email was taken between
	// the existence check and the insert.
	ErrDuplicateEmail = errors.New("email already imported")
)

const (
	ReasonEmailMissing = "Email missing"
	ReasonNegativeCost = "annual cost must not be negative"
)

// RowError is one skipped or failed row. Row is the 1-based sheet row,
// counting the header.
type RowError struct {
	Row       int    `json:"row"`
	Reason    string `json:"reason"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

func duplicateError(row int, email string) RowError {
	return RowError{Row: row, Reason: fmt.Sprintf("Skipped %s: Exists", email), Duplicate: true}
}

func (e RowError) String() string {
	if e.Duplicate {
		return e.Reason
	}
	return fmt.Sprintf("Row %d: %s", e.Row, e.Reason)
}

package importer

import (
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	// Day-first forms, reached only when the month-first reading is invalid.
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// maxExcelSerial is 9999-12-31 in the 1900 date system.
const maxExcelSerial = 2958465

// ParseDate makes a best-effort attempt at a calendar date. Numeric cells are
// read as spreadsheet date serials.
func ParseDate(cell Cell) (time.Time, bool) {
	switch cell.Kind {
	case CellNumber:
		if cell.Number < 1 || cell.Number > maxExcelSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(cell.Number, false)
		if err != nil {
			return time.Time{}, false
		}
		return truncateDay(t), true
	case CellText:
		raw := strings.TrimSpace(cell.Text)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return truncateDay(t), true
			}
		}
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

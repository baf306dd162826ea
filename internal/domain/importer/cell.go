package importer

import (
	"strconv"
	"strings"
)

type CellKind int

const (
	CellAbsent CellKind = iota
	CellNumber
	CellText
)

// Cell is a loosely typed spreadsheet value.
type Cell struct {
	Kind   CellKind
	Number float64
	Text   string
}

func Absent() Cell              { return Cell{Kind: CellAbsent} }
func Number(v float64) Cell     { return Cell{Kind: CellNumber, Number: v} }
func Text(v string) Cell        { return Cell{Kind: CellText, Text: v} }
func (c Cell) IsAbsent() bool   { return c.Kind == CellAbsent || (c.Kind == CellText && strings.TrimSpace(c.Text) == "") }
func (c Cell) IsNumber() bool   { return c.Kind == CellNumber }

// Infer types a raw string: blank is absent, numeric text is a number.
func Infer(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Absent()
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Number(v)
	}
	return Text(trimmed)
}

func (c Cell) String() string {
	switch c.Kind {
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellText:
		return strings.TrimSpace(c.Text)
	default:
		return ""
	}
}

// Float parses the cell as an amount. Text may carry a currency code and
// thousands separators ("INR 5,00,000").
func (c Cell) Float() (float64, bool) {
	switch c.Kind {
	case CellNumber:
		return c.Number, true
	case CellText:
		cleaned := strings.ToUpper(strings.TrimSpace(c.Text))
		for _, prefix := range []string{"INR", "RS.", "RS", "₹"} {
			cleaned = strings.TrimPrefix(cleaned, prefix)
		}
		cleaned = strings.ReplaceAll(strings.TrimSpace(cleaned), ",", "")
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

// Row maps observed header text to its cell.
type Row map[string]Cell

package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"hrdocs/internal/domain/importer"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	TemplateName    = "Employee_Import_Template.xlsx"
)

// TemplateHeaders are the columns of the downloadable import workbook.
var TemplateHeaders = []string{
	"Employee ID", "Full Name", "Email Address", "Designation",
	"Department", "Joining Date", "Location", "Employment Type", "Annual CTC",
}

type Sheet struct {
	Headers []string
	Rows    []importer.Row
	// Lines holds the 1-based sheet row of each entry in Rows.
	Lines []int
}

// Parse reads the first worksheet of an .xlsx file or a .csv file. The format
// is chosen by file extension.
func Parse(filename string, r io.Reader) (Sheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return parseXLSX(r)
	case ".csv":
		return parseCSV(r)
	default:
		return Sheet{}, importer.ErrUnsupportedFormat
	}
}

func parseXLSX(r io.Reader) (Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Sheet{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Sheet{}, errors.New("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return Sheet{}, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	lines := make([]int, len(records))
	for i := range records {
		lines[i] = i + 1
	}
	return build(records, lines), nil
}

func parseCSV(r io.Reader) (Sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	var (
		records [][]string
		lines   []int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Sheet{}, fmt.Errorf("read csv: %w", err)
		}
		// The reader drops empty lines; FieldPos keeps the numbering the user sees.
		line, _ := reader.FieldPos(0)
		records = append(records, record)
		lines = append(lines, line)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return build(records, lines), nil
}

// build turns records into a Sheet; lines[i] is the sheet row of records[i].
func build(records [][]string, lines []int) Sheet {
	if len(records) == 0 {
		return Sheet{}
	}
	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	sheet := Sheet{Headers: headers}
	for i, record := range records[1:] {
		if blank(record) {
			continue
		}
		sheet.Lines = append(sheet.Lines, lines[i+1])
		row := make(importer.Row, len(headers))
		for j, header := range headers {
			if header == "" {
				continue
			}
			if j < len(record) {
				row[header] = importer.Infer(record[j])
			} else {
				row[header] = importer.Absent()
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Template builds an empty import workbook carrying TemplateHeaders.
func Template() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := make([]interface{}, len(TemplateHeaders))
	for i, h := range TemplateHeaders {
		headers[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

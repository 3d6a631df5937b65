package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/homebite/orderdesk/internal/orders"
	"github.com/homebite/orderdesk/internal/platform/httpx"
	"github.com/homebite/orderdesk/internal/shared"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrNoDataRows      = errors.New("file contains no data rows")
	ErrUnsupportedType = errors.New("unsupported file type; upload a .csv or .xlsx file")
	ErrLegacyXLS       = errors.New("legacy .xls workbooks are not supported; save the sheet as .xlsx or .csv")
)

// ParseError reports an unreadable or empty file. Line is the 1-based sheet
// line when known.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return e.Err.Error()
}

func (e *ParseError) Unwrap() []error { return []error{e.Err, httpx.ErrValidation} }

// Row is one data row with the sheet line it came from (the header is line 1).
type Row struct {
	Line  int
	Cells []string
}

// Sheet is a parsed file: one header row and the non-blank data rows.
type Sheet struct {
	Headers []string
	Rows    []Row
}

// Kind is a supported file format.
type Kind int

const (
	KindUnknown Kind = iota
	KindCSV
	KindXLSX
	// KindXLS is the pre-2007 binary workbook, recognised only to reject it.
	KindXLS
)

// DetectKind picks the format from the file extension, falling back to the
// MIME type.
func DetectKind(filename, contentType string) Kind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return KindCSV
	case ".xlsx":
		return KindXLSX
	case ".xls":
		return KindXLS
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	switch ct {
	case "text/csv", "application/csv", "text/plain":
		return KindCSV
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return KindXLSX
	case "application/vnd.ms-excel":
		return KindXLS
	}
	return KindUnknown
}

// Parse reads a CSV or XLSX upload.
func Parse(filename, contentType string, data []byte) (*Sheet, error) {
	if len(bytes.TrimSpace(shared.StripBOM(data))) == 0 {
		return nil, &ParseError{Err: ErrEmptyFile}
	}
	switch DetectKind(filename, contentType) {
	case KindCSV:
		return ParseCSV(bytes.NewReader(data))
	case KindXLSX:
		return ParseXLSX(bytes.NewReader(data))
	case KindXLS:
		return nil, &ParseError{Err: ErrLegacyXLS}
	default:
		return nil, &ParseError{Err: ErrUnsupportedType}
	}
}

// ParseCSV parses quoted CSV. Rows may have differing field counts.
func ParseCSV(r io.Reader) (*Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	reader := csv.NewReader(bytes.NewReader(shared.StripBOM(data)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var records []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &ParseError{Line: perr.Line, Err: perr.Err}
			}
			return nil, &ParseError{Err: err}
		}
		line, _ := reader.FieldPos(0)
		records = append(records, Row{Line: line, Cells: record})
	}
	return buildSheet(records)
}

// ParseXLSX reads the first worksheet. Numeric cells in the date column are
// Excel serial dates and are rewritten as YYYY-MM-DD.
func ParseXLSX(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("open workbook: %w", err)}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Err: ErrEmptyFile}
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("read sheet %q: %w", sheets[0], err)}
	}
	records := make([]Row, 0, len(rows))
	for i, cells := range rows {
		records = append(records, Row{Line: i + 1, Cells: cells})
	}
	sheet, err := buildSheet(records)
	if err != nil {
		return nil, err
	}

	cols := ResolveColumns(sheet.Headers)
	if idx, ok := cols[ColDate]; ok {
		for _, row := range sheet.Rows {
			if idx < len(row.Cells) {
				row.Cells[idx] = excelDate(row.Cells[idx])
			}
		}
	}
	return sheet, nil
}

// excelDate converts a serial day number; other values pass through.
func excelDate(cell string) string {
	v := strings.TrimSpace(cell)
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil || serial <= 0 {
		return cell
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return cell
	}
	return t.Format(orders.DateLayout)
}

// buildSheet takes the first non-blank record as the header and drops blank rows.
func buildSheet(records []Row) (*Sheet, error) {
	start := -1
	for i, rec := range records {
		if !blank(rec.Cells) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, &ParseError{Err: ErrEmptyFile}
	}
	sheet := &Sheet{Headers: trimAll(records[start].Cells)}
	for _, rec := range records[start+1:] {
		if blank(rec.Cells) {
			continue
		}
		sheet.Rows = append(sheet.Rows, rec)
	}
	if len(sheet.Rows) == 0 {
		return nil, &ParseError{Err: ErrNoDataRows}
	}
	return sheet, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

package importer

import (
	"fmt"

	"github.com/homebite/orderdesk/internal/orders"
)

// PreviewSampleSize is how many rows a preview shows.
const PreviewSampleSize = 10

// Preview summarises a parsed sheet before upload.
type Preview struct {
	Headers        []string   `json:"headers"`
	SampleRows     [][]string `json:"sampleRows"`
	TotalRows      int        `json:"totalRows"`
	MissingColumns []string   `json:"missingColumns,omitempty"`
	Errors         []string   `json:"errors"`
	CanUpload      bool       `json:"canUpload"`
}

// BuildPreview checks required columns and every non-empty date cell. Any
// error blocks the upload.
func BuildPreview(sheet *Sheet) Preview {
	p := Preview{
		Headers:   sheet.Headers,
		TotalRows: len(sheet.Rows),
		Errors:    []string{},
	}
	for i := 0; i < len(sheet.Rows) && i < PreviewSampleSize; i++ {
		p.SampleRows = append(p.SampleRows, padRow(sheet.Rows[i].Cells, len(sheet.Headers)))
	}

	if missing := MissingColumns(sheet.Headers); len(missing) > 0 {
		p.MissingColumns = missing
		p.Errors = append(p.Errors, (&ColumnError{Missing: missing}).Error())
	}
	p.Errors = append(p.Errors, DateErrors(sheet)...)
	p.CanUpload = len(p.Errors) == 0
	return p
}

// DateErrors lists every non-empty date cell that cannot be parsed.
func DateErrors(sheet *Sheet) []string {
	cols := ResolveColumns(sheet.Headers)
	if !cols.Has(ColDate) {
		return nil
	}
	var out []string
	for _, row := range sheet.Rows {
		v := cols.Cell(row.Cells, ColDate)
		if v == "" {
			continue
		}
		if _, ok := orders.ParseDateString(v); !ok {
			out = append(out, fmt.Sprintf("Row %d: invalid date %q", row.Line, v))
		}
	}
	return out
}

func padRow(cells []string, width int) []string {
	out := make([]string, width)
	copy(out, cells)
	return out
}

package shared

import (
	"encoding/csv"
	"io"
)

// utf8BOM makes spreadsheet applications detect UTF-8 when opening exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NewCSVWriter writes the UTF-8 BOM and returns an RFC 4180 writer: fields
// containing commas, quotes or newlines are quoted with inner quotes doubled.
func NewCSVWriter(w io.Writer) (*csv.Writer, error) {
	if _, err := w.Write(utf8BOM); err != nil {
		return nil, err
	}
	writer := csv.NewWriter(w)
	writer.UseCRLF = true
	return writer, nil
}

// StripBOM removes a leading UTF-8 BOM.
func StripBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == utf8BOM[0] && b[1] == utf8BOM[1] && b[2] == utf8BOM[2] {
		return b[3:]
	}
	return b
}

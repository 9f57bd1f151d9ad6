package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
)

// Dataset is a table of rows keyed by header. Headers fix the column order.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// CSVExporter writes datasets in the dialect pt-BR spreadsheets open without
// an import wizard: UTF-8 BOM, semicolon separator, CRLF line endings.
type CSVExporter struct {
	comma   rune
	bom     bool
	useCRLF bool
}

// CSVOption tweaks the CSV dialect.
type CSVOption func(*CSVExporter)

// WithComma overrides the field separator.
func WithComma(r rune) CSVOption {
	return func(e *CSVExporter) { e.comma = r }
}

// WithoutBOM drops the leading byte order mark.
func WithoutBOM() CSVOption {
	return func(e *CSVExporter) { e.bom = false }
}

// NewCSVExporter builds an exporter for the pt-BR dialect unless options say otherwise.
func NewCSVExporter(opts ...CSVOption) *CSVExporter {
	e := &CSVExporter{comma: ';', bom: true, useCRLF: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render encodes the dataset. Missing cells render empty.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, errors.New("csv requires at least one header")
	}

	var buf bytes.Buffer
	if e.bom {
		buf.WriteString("\ufeff")
	}
	w := csv.NewWriter(&buf)
	w.Comma = e.comma
	w.UseCRLF = e.useCRLF

	if err := w.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	record := make([]string, len(data.Headers))
	for n, row := range data.Rows {
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", n+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

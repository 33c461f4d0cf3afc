package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/anveshk/osintdex/db/searchdb"
	"github.com/xuri/excelize/v2"
)

const (
	columnType           = "type"
	columnValue          = "value"
	columnSource         = "source"
	columnAdditionalInfo = "additional_info"
)

var requiredColumns = []string{columnType, columnValue}

type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("Missing column: %s", e.Column)
}

// table is one parsed dataset: a header mapped to column positions plus
// raw string rows. Rows may be ragged; missing cells read as "".
type table struct {
	columns map[string]int
	rows    [][]string
}

// parseDataset picks the format from the filename suffix: workbooks for
// .xlsx/.xls, otherwise delimited text (tab-separated for .tsv).
func parseDataset(data []byte, filename string) (*table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return parseWorkbook(data)
	case ".tsv":
		return parseDelimited(data, '\t')
	default:
		return parseDelimited(data, ',')
	}
}

func parseWorkbook(data []byte) (*table, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", sheets[0], err)
	}

	return newTable(rows)
}

func parseDelimited(data []byte, comma rune) (*table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not parse delimited data: %w", err)
		}
		rows = append(rows, row)
	}

	return newTable(rows)
}

func newTable(rows [][]string) (*table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	return &table{columns: columns, rows: rows[1:]}, nil
}

// normalize validates the header and converts rows into records. The
// type column is lower-cased; source and additional_info fall back to "".
// Rows with an empty type or value are dropped and counted in skipped.
func (t *table) normalize() (records []searchdb.Record, skipped int, err error) {
	for _, column := range requiredColumns {
		if _, ok := t.columns[column]; !ok {
			return nil, 0, &MissingColumnError{Column: column}
		}
	}

	records = make([]searchdb.Record, 0, len(t.rows))
	for _, row := range t.rows {
		record := searchdb.Record{
			Type:           strings.ToLower(t.cell(row, columnType)),
			Value:          t.cell(row, columnValue),
			Source:         t.cell(row, columnSource),
			AdditionalInfo: t.cell(row, columnAdditionalInfo),
		}
		if strings.TrimSpace(record.Type) == "" || strings.TrimSpace(record.Value) == "" {
			skipped++
			continue
		}
		records = append(records, record)
	}

	return records, skipped, nil
}

func (t *table) cell(row []string, column string) string {
	index, ok := t.columns[column]
	if !ok || index >= len(row) {
		return ""
	}
	return row[index]
}

package core

// frame.go loads semicolon-delimited sensor CSV files into a columnar frame.
//
// The exports this pipeline ingests use ';' as the field separator and ','
// as the decimal mark, and usually end every line with a trailing separator
// that produces an empty header cell. The loader handles both, plus BOMs and
// invalid UTF-8, via WrapReader.
//
// Loading is eager: each column is classified as numeric or textual up
// front, and numeric cells are parsed (with the no-reading sentinel applied)
// exactly once. Downstream stages work from the parsed values.

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// LoadError reports a failure to open or parse a sensor CSV file. It marks
// the file as structurally unreadable, as opposed to readable but containing
// invalid rows.
type LoadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", filepath.Base(e.Path), e.Err)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Column is a single named column of a Frame.
//
// Cells always holds the trimmed raw text. For numeric columns, Floats holds
// the parsed value per row, with Valid=false for cells that were empty,
// unparseable, or equal to the no-reading sentinel. For textual columns,
// Floats is nil.
type Column struct {
	Name    string
	Numeric bool
	Cells   []string
	Floats  []pgtype.Float8
}

// Frame is the columnar form of one sensor CSV file.
type Frame struct {
	Columns []Column
	Rows    int
}

// Column returns the first column with the given name, or false if no such
// column exists.
func (f *Frame) Column(name string) (*Column, bool) {
	for i := range f.Columns {
		if f.Columns[i].Name == name {
			return &f.Columns[i], true
		}
	}
	return nil, false
}

// LoadFrame opens and parses the sensor CSV file at path. Any failure is
// returned as a *LoadError, which callers treat as a fatal (structural)
// problem with the file.
func LoadFrame(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer file.Close()

	frame, err := ReadFrame(file)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return frame, nil
}

// ReadFrame parses semicolon-delimited CSV from r into a Frame.
//
// The first record is the header. Columns with an empty header name (the
// trailing-separator artifact) are dropped. Rows whose cells are all empty
// are skipped. Short rows are padded with empty cells so every column has
// one cell per row.
func ReadFrame(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(WrapReader(r))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1 // allow variable field counts
	reader.LazyQuotes = true    // tolerate bare quotes in sensor labels

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no header row")
	}

	// Header: trim names and keep the indexes of named columns.
	header := records[0]
	indexes := make([]int, 0, len(header))
	names := make([]string, 0, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" || strings.HasPrefix(strings.ToLower(name), "unnamed") {
			continue
		}
		indexes = append(indexes, i)
		names = append(names, name)
	}

	frame := &Frame{Columns: make([]Column, len(names))}
	for i, name := range names {
		frame.Columns[i] = Column{Name: name}
	}

	for _, record := range records[1:] {
		if isEmptyRow(record) {
			continue
		}
		for i, src := range indexes {
			frame.Columns[i].Cells = append(frame.Columns[i].Cells, cellAt(record, src))
		}
		frame.Rows++
	}

	for i := range frame.Columns {
		classifyColumn(&frame.Columns[i])
	}

	return frame, nil
}

// cellAt returns the trimmed cell at index i, or "" when the record is too
// short.
func cellAt(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// isEmptyRow checks if all fields in a record are empty or whitespace.
func isEmptyRow(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// classifyColumn decides whether a column is numeric and, if so, parses its
// cells.
//
// A column is numeric when every non-empty cell parses as a number
// (decimal-comma accepted). Columns with no non-empty cells count as
// numeric. The no-reading sentinel is applied here, at load time only.
func classifyColumn(c *Column) {
	floats := make([]pgtype.Float8, len(c.Cells))
	for i, cell := range c.Cells {
		v := parseReading(cell)
		if cell != "" && !v.Valid {
			c.Numeric = false
			c.Floats = nil
			return
		}
		floats[i] = applySentinel(v)
	}
	c.Numeric = true
	c.Floats = floats
}

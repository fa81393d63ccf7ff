// Package table provides the tabular input model for graph construction.
//
// A Table is an ordered set of named columns over string-valued rows, the
// shape in which node lists and edge lists arrive from upstream data exports.
// Cells are kept as strings; typed access goes through the coercion helpers
// (Int64, Float64), which fail loudly rather than dropping rows.
//
// Tables preserve row order. Downstream graph construction iterates rows in
// order, so the table is the single source of iteration determinism.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/ossmap/ossmap/pkg/errors"
)

// Table is an ordered collection of named columns over string rows.
// The zero value is not usable - use New or FromRecords.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New creates an empty table with the given column names.
func New(columns ...string) *Table {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}
	return &Table{
		columns: slices.Clone(columns),
		index:   index,
	}
}

// FromRecords builds a table from raw records where the first record is the
// header row. Every subsequent record must have the same arity as the header.
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, errors.New(errors.CodeInvalidInput, "records must include a header row")
	}
	t := New(records[0]...)
	for i, rec := range records[1:] {
		if err := t.AppendRow(rec...); err != nil {
			return nil, errors.Wrap(errors.CodeInvalidInput, err, "record %d", i+1)
		}
	}
	return t, nil
}

// ReadCSV reads a table from CSV data. The first row is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidInput, err, "read csv")
	}
	return FromRecords(records)
}

// ReadCSVFile reads a table from a CSV file.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeNotFound, err, "open %s", path)
	}
	defer f.Close()
	return ReadCSV(f)
}

// AppendRow appends a row of cells. The cell count must match the column count.
func (t *Table) AppendRow(cells ...string) error {
	if len(cells) != len(t.columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.columns))
	}
	t.rows = append(t.rows, slices.Clone(cells))
	return nil
}

// Columns returns the column names in declaration order.
// The returned slice is a copy and can be safely modified.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// RowCount returns the number of data rows.
func (t *Table) RowCount() int { return len(t.rows) }

// Records returns the table as a header row followed by all data rows.
// The result is a deep copy; it feeds serialization and content hashing.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.rows)+1)
	records = append(records, slices.Clone(t.columns))
	for _, row := range t.rows {
		records = append(records, slices.Clone(row))
	}
	return records
}

// ColumnIndex returns the position of a column and whether it exists.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// HasColumn reports whether the table declares the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// MissingColumns returns the subset of required that the table does not
// declare, in the order given. An empty result means the schema is satisfied.
func (t *Table) MissingColumns(required ...string) []string {
	var missing []string
	for _, name := range required {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Cell returns the cell at (row, column). The second return is false when
// the row is out of range or the column does not exist.
func (t *Table) Cell(row int, column string) (string, bool) {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.rows) {
		return "", false
	}
	return t.rows[row][i], true
}

// Int64 coerces the cell at (row, column) to a 64-bit integer.
// A cell that cannot be parsed is a fatal TYPE_COERCION error.
func (t *Table) Int64(row int, column string) (int64, error) {
	cell, ok := t.Cell(row, column)
	if !ok {
		return 0, errors.New(errors.CodeInvalidInput, "no cell at row %d column %q", row, column)
	}
	v, err := strconv.ParseInt(cell, 10, 64)
	if err != nil {
		return 0, errors.Wrap(errors.CodeTypeCoercion, err, "row %d: column %q: %q is not an integer", row, column, cell)
	}
	return v, nil
}

// Float64 coerces the cell at (row, column) to a 64-bit float.
// A cell that cannot be parsed is a fatal TYPE_COERCION error.
func (t *Table) Float64(row int, column string) (float64, error) {
	cell, ok := t.Cell(row, column)
	if !ok {
		return 0, errors.New(errors.CodeInvalidInput, "no cell at row %d column %q", row, column)
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, errors.Wrap(errors.CodeTypeCoercion, err, "row %d: column %q: %q is not a number", row, column, cell)
	}
	return v, nil
}

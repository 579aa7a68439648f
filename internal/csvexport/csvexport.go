// Package csvexport converts JSON record sets into CSV tables.
package csvexport

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Table is a rectangular CSV table. Every row has len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ErrNotRecords is returned when the JSON input is neither an array of
// objects nor a single object.
var ErrNotRecords = errors.New("expected a JSON array of objects")

// FromJSON reads a JSON array of objects and flattens it into a table.
//
// A single top-level object is treated as a one-row array. Columns are the
// union of object keys in the order they are first seen. Strings are copied
// verbatim, numbers keep their JSON literal, booleans become true/false, null
// and missing keys become empty cells, nested arrays and objects become compact
// JSON.
func FromJSON(r io.Reader) (*Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON: %w", err)
	}

	var records []record
	switch tok {
	case json.Delim('['):
		for i := 0; dec.More(); i++ {
			rec, err := readRecord(dec)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			records = append(records, rec)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("failed to read JSON: %w", err)
		}
	case json.Delim('{'):
		rec, err := readFields(dec)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	default:
		return nil, ErrNotRecords
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}

	return buildTable(records), nil
}

type field struct {
	key   string
	value string
}

type record []field

func readRecord(dec *json.Decoder) (record, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON: %w", err)
	}
	if tok != json.Delim('{') {
		return nil, ErrNotRecords
	}
	return readFields(dec)
}

// readFields reads key/value pairs up to and including the closing brace.
func readFields(dec *json.Decoder) (record, error) {
	var rec record
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read JSON: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		cell, err := cellValue(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		rec = append(rec, field{key: key, value: cell})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to read JSON: %w", err)
	}
	return rec, nil
}

func cellValue(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case 'n':
		return "", nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		// numbers and booleans keep their literal form
		return string(raw), nil
	}
}

func buildTable(records []record) *Table {
	t := &Table{}
	index := make(map[string]int)
	for _, rec := range records {
		for _, f := range rec {
			if _, seen := index[f.key]; !seen {
				index[f.key] = len(t.Columns)
				t.Columns = append(t.Columns, f.key)
			}
		}
	}

	t.Rows = make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(t.Columns))
		for _, f := range rec {
			row[index[f.key]] = f.value
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Write writes the table as RFC 4180 CSV with a header row.
// A table without columns produces no output. Cells are written verbatim,
// including any \r\n inside a quoted field.
func Write(w io.Writer, t *Table) error {
	if t == nil || len(t.Columns) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	if err := writeRecord(w, cw, t.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
		if err := writeRecord(w, cw, row); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeRecord writes one record through cw. A record made of a single empty
// cell is written as "" because csv.Writer would emit a blank line, which
// readers skip.
func writeRecord(w io.Writer, cw *csv.Writer, record []string) error {
	if len(record) != 1 || record[0] != "" {
		return cw.Write(record)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\"\"\n")
	return err
}

// Parse reads CSV written by Write back into a table.
//
// encoding/csv folds \r\n to \n, so a cell that held \r\n comes back with
// a bare \n. Every other cell is recovered unchanged.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}
	return &Table{Columns: records[0], Rows: records[1:]}, nil
}

// Convert reads JSON records from r and writes them to w as CSV.
func Convert(r io.Reader, w io.Writer) error {
	t, err := FromJSON(r)
	if err != nil {
		return err
	}
	return Write(w, t)
}

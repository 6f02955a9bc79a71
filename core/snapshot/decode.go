package snapshot

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"datadiff/core/record"
)

// maxLineSize bounds a single NDJSON line.
const maxLineSize = 16 * 1024 * 1024

// Stats counts the rows of one decode run.
type Stats struct {
	Rows int
	// Dropped counts CSV lines whose column count differs from the header.
	Dropped int
}

func (s *Stats) add(o Stats) {
	s.Rows += o.Rows
	s.Dropped += o.Dropped
}

// RowFunc receives each decoded row. Returning an error stops decoding.
type RowFunc func(record.Data) error

// Decode reads every row of r in format f and hands it to fn.
func Decode(r io.Reader, f Format, fn RowFunc) (Stats, error) {
	switch f {
	case FormatJSON:
		return decodeJSON(r, fn)
	case FormatNDJSON:
		return decodeNDJSON(r, fn)
	case FormatCSV:
		return decodeCSV(r, fn)
	default:
		return Stats{}, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

func decodeJSON(r io.Reader, fn RowFunc) (Stats, error) {
	var stats Stats
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return stats, fmt.Errorf("JSON snapshot: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return stats, fmt.Errorf("JSON snapshot: expected an array of objects, got %v", tok)
	}
	for dec.More() {
		row, err := record.DecodeObject(dec)
		if err != nil {
			return stats, fmt.Errorf("JSON snapshot: element %d: %w", stats.Rows, err)
		}
		if err := fn(row); err != nil {
			return stats, err
		}
		stats.Rows++
	}
	if _, err := dec.Token(); err != nil {
		return stats, fmt.Errorf("JSON snapshot: %w", err)
	}
	return stats, nil
}

func decodeNDJSON(r io.Reader, fn RowFunc) (Stats, error) {
	var stats Stats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}
		var row record.Data
		if err := json.Unmarshal(b, &row); err != nil {
			return stats, fmt.Errorf("NDJSON snapshot: line %d: %w", line, err)
		}
		if err := fn(row); err != nil {
			return stats, err
		}
		stats.Rows++
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("NDJSON snapshot: line %d: %w", line+1, err)
	}
	return stats, nil
}

func decodeCSV(r io.Reader, fn RowFunc) (Stats, error) {
	var stats Stats
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("CSV snapshot: failed to read headers: %w", err)
	}
	headers[0] = strings.TrimPrefix(headers[0], "\ufeff")

	line := 1
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		line++
		if err != nil {
			return stats, fmt.Errorf("CSV snapshot: line %d: %w", line, err)
		}
		if len(cells) != len(headers) {
			stats.Dropped++
			continue
		}
		var row record.Data
		for i, cell := range cells {
			row.Set(headers[i], record.String(cell))
		}
		if err := fn(row); err != nil {
			return stats, err
		}
		stats.Rows++
	}
}

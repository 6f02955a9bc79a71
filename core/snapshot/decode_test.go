package snapshot

import (
	"errors"
	"strings"
	"testing"

	"datadiff/core/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(t *testing.T, input string, f Format) ([]record.Data, Stats, error) {
	t.Helper()
	var rows []record.Data
	stats, err := Decode(strings.NewReader(input), f, func(d record.Data) error {
		rows = append(rows, d)
		return nil
	})
	return rows, stats, err
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		input   string
		want    []map[string]any
		keys    []string
		dropped int
	}{
		{
			name:   "json array",
			format: FormatJSON,
			input:  `[{"id": 1, "name": "Peter", "total": 59.99}, {"id": 2, "name": null}]`,
			want: []map[string]any{
				{"id": int64(1), "name": "Peter", "total": 59.99},
				{"id": int64(2), "name": nil},
			},
			keys: []string{"id", "name", "total"},
		},
		{
			name:   "json empty array",
			format: FormatJSON,
			input:  ` [ ] `,
		},
		{
			name:   "ndjson",
			format: FormatNDJSON,
			input:  "{\"z\": 1, \"a\": \"x\"}\n\n  {\"z\": 2, \"a\": {\"nested\": true}}\n",
			want: []map[string]any{
				{"z": int64(1), "a": "x"},
				{"z": int64(2), "a": `{"nested":true}`},
			},
			keys: []string{"z", "a"},
		},
		{
			name:   "csv",
			format: FormatCSV,
			input:  "\ufeffid,name,total\n1,Peter,59.99\n2,\"Paul, Jr.\",\n3,short\n",
			want: []map[string]any{
				{"id": "1", "name": "Peter", "total": "59.99"},
				{"id": "2", "name": "Paul, Jr.", "total": ""},
			},
			keys:    []string{"id", "name", "total"},
			dropped: 1,
		},
		{
			name:   "csv empty",
			format: FormatCSV,
			input:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, stats, err := collectRows(t, tt.input, tt.format)
			require.NoError(t, err)
			require.Len(t, rows, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want, rows[i].Map())
			}
			if len(rows) > 0 {
				assert.Equal(t, tt.keys, rows[0].Keys())
			}
			assert.Equal(t, len(tt.want), stats.Rows)
			assert.Equal(t, tt.dropped, stats.Dropped)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		msg    string
	}{
		{"json object instead of array", FormatJSON, `{"id": 1}`, "expected an array"},
		{"json array of scalars", FormatJSON, `[1, 2]`, "element 0"},
		{"json truncated", FormatJSON, `[{"id": 1}`, "JSON snapshot"},
		{"ndjson bad line", FormatNDJSON, "{\"id\": 1}\n{oops}\n", "line 2"},
		{"ndjson array line", FormatNDJSON, "[1]\n", "line 1"},
		{"unknown format", Format("xml"), `<rows/>`, "unknown snapshot format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := collectRows(t, tt.input, tt.format)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestDecode_CallbackErrorStops(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	stats, err := Decode(strings.NewReader("{\"a\":1}\n{\"a\":2}\n"), FormatNDJSON, func(record.Data) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, stats.Rows)
}

func TestFormats(t *testing.T) {
	parsed := []struct {
		in   string
		want Format
	}{
		{"", FormatAuto},
		{"auto", FormatAuto},
		{"JSON", FormatJSON},
		{"jsonl", FormatNDJSON},
		{"ndjson", FormatNDJSON},
		{" csv ", FormatCSV},
	}
	for _, tt := range parsed {
		t.Run("parse "+tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	_, err := ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	detected := []struct {
		in   string
		want Format
	}{
		{"a/b/export.json", FormatJSON},
		{"export.JSONL", FormatNDJSON},
		{"export.ndjson", FormatNDJSON},
		{"s3/x.csv", FormatCSV},
	}
	for _, tt := range detected {
		t.Run("detect "+tt.in, func(t *testing.T) {
			got, err := DetectFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	_, err = DetectFormat("export.txt")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

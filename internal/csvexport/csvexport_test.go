package csvexport

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *Table
	}{
		{
			name:  "first seen key order",
			input: `[{"b":1,"a":"x"},{"a":"y","c":true}]`,
			want: &Table{
				Columns: []string{"b", "a", "c"},
				Rows:    [][]string{{"1", "x", ""}, {"", "y", "true"}},
			},
		},
		{
			name:  "null and nested values",
			input: `[{"id":7,"tags":["a", "b"],"meta":{"k": 1},"note":null}]`,
			want: &Table{
				Columns: []string{"id", "tags", "meta", "note"},
				Rows:    [][]string{{"7", `["a","b"]`, `{"k":1}`, ""}},
			},
		},
		{
			name:  "single object is one row",
			input: `{"account":"AE-1","balance":25000.50}`,
			want: &Table{
				Columns: []string{"account", "balance"},
				Rows:    [][]string{{"AE-1", "25000.50"}},
			},
		},
		{
			name:  "large numbers keep their literal",
			input: `[{"n":12345678901234567890}]`,
			want: &Table{
				Columns: []string{"n"},
				Rows:    [][]string{{"12345678901234567890"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromJSON(strings.NewReader(tt.input))
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("table mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromJSON_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"scalar", `42`},
		{"array of scalars", `[1,2]`},
		{"truncated", `[{"a":1}`},
		{"trailing data", `[{"a":1}] [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromJSON(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}

	_, err := FromJSON(strings.NewReader(`"text"`))
	assert.ErrorIs(t, err, ErrNotRecords)
}

func TestWrite_Quoting(t *testing.T) {
	table := &Table{
		Columns: []string{"name", "note"},
		Rows:    [][]string{{"Smith, J", `said "hi"`}, {"multi\nline", ""}},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, table))
	assert.Equal(t, "name,note\n\"Smith, J\",\"said \"\"hi\"\"\"\n\"multi\nline\",\n", buf.String())
}

func TestWrite_RaggedRow(t *testing.T) {
	err := Write(&bytes.Buffer{}, &Table{Columns: []string{"a", "b"}, Rows: [][]string{{"1"}}})
	assert.Error(t, err)
}

func TestWrite_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &Table{}))
	assert.Empty(t, buf.String())
}

func TestConvert_RoundTrip(t *testing.T) {
	input := `[
		{"account_id":"ACC-001","customer":"Al Noor, LLC","balance":125000,"dormant":true},
		{"account_id":"ACC-002","last_activity":"2019-03-01","balance":30.5,"flags":["kyc","aml"]},
		{"customer":"Quote \"Q\" Ltd","dormant":false}
	]`

	var buf bytes.Buffer
	require.NoError(t, Convert(strings.NewReader(input), &buf))

	got, err := Parse(&buf)
	require.NoError(t, err)

	want := &Table{
		Columns: []string{"account_id", "customer", "balance", "dormant", "last_activity", "flags"},
		Rows: [][]string{
			{"ACC-001", "Al Noor, LLC", "125000", "true", "", ""},
			{"ACC-002", "", "30.5", "", "2019-03-01", `["kyc","aml"]`},
			{"", `Quote "Q" Ltd`, "", "false", "", ""},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestConvert_SingleColumnEmptyCells(t *testing.T) {
	input := `[{"a":"x"},{"a":null},{"a":"y"},{}]`

	var buf bytes.Buffer
	require.NoError(t, Convert(strings.NewReader(input), &buf))
	assert.Equal(t, "a\nx\n\"\"\ny\n\"\"\n", buf.String())

	got, err := Parse(&buf)
	require.NoError(t, err)

	want := &Table{
		Columns: []string{"a"},
		Rows:    [][]string{{"x"}, {""}, {"y"}, {""}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestConvert_CRLFInCell(t *testing.T) {
	input := `[{"id":"1","note":"line1\r\nline2"}]`

	var buf bytes.Buffer
	require.NoError(t, Convert(strings.NewReader(input), &buf))
	assert.Contains(t, buf.String(), "\"line1\r\nline2\"")

	got, err := Parse(&buf)
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, []string{"1", "line1\nline2"}, got.Rows[0])
}

package core

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, d *RowDecoder) []RawRow {
	t.Helper()
	var rows []RawRow
	for {
		row, err := d.Next()
		if errors.Is(err, io.EOF) {
			return rows
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
}

func TestRowDecoder_SkipsHeaderOnce(t *testing.T) {
	input := "a,b\nEmp ID,Name\n1,x\n"
	d := NewRowDecoder(strings.NewReader(input))

	rows := readAll(t, d)
	require.Len(t, rows, 2)
	assert.Equal(t, RawRow{"Emp ID", "Name"}, rows[0], "only the first record is a header")
	assert.Equal(t, RawRow{"1", "x"}, rows[1])
}

func TestRowDecoder_RowCounts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "empty stream", input: "", want: 0},
		{name: "header only", input: "h1,h2\n", want: 0},
		{name: "header without newline", input: "h1,h2", want: 0},
		{name: "one row", input: "h\n1\n", want: 1},
		{name: "no trailing newline", input: "h\n1\n2", want: 2},
		{name: "CRLF line endings", input: "h\r\n1\r\n2\r\n", want: 2},
		{name: "blank lines ignored", input: "h\n\n1\n\n2\n", want: 2},
		{name: "ragged rows kept", input: "a,b,c\n1\n1,2,3,4\n", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := readAll(t, NewRowDecoder(strings.NewReader(tt.input)))
			assert.Len(t, rows, tt.want)
		})
	}
}

func TestRowDecoder_QuotedFields(t *testing.T) {
	input := "h1,h2\n\"Smith, John\",\"line1\nline2\"\n"
	rows := readAll(t, NewRowDecoder(strings.NewReader(input)))
	require.Len(t, rows, 1)
	assert.Equal(t, RawRow{"Smith, John", "line1\nline2"}, rows[0])
}

func TestRowDecoder_BOMAndInvalidUTF8(t *testing.T) {
	input := "\xEF\xBB\xBFh\nab\x80c\n"
	d := NewRowDecoder(strings.NewReader(input))
	rows := readAll(t, d)

	require.Len(t, rows, 1)
	assert.Equal(t, RawRow{"ab?c"}, rows[0])
	assert.Equal(t, int64(len("h\nab?c\n")), d.BytesRead())
}

func TestRowDecoder_StrayQuotesKept(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  RawRow
	}{
		{name: "quote inside a name", input: "h\n1,O\"Brien,x\n", want: RawRow{"1", "O\"Brien", "x"}},
		{name: "trailing quote", input: "h\n1,5\" tall\n", want: RawRow{"1", "5\" tall"}},
		{name: "escaped quote in quoted field", input: "h\n\"Smith \"\"Jr\"\"\",x\n", want: RawRow{"Smith \"Jr\"", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewRowDecoder(strings.NewReader(tt.input))
			rows := readAll(t, d)
			require.Len(t, rows, 1)
			assert.Equal(t, tt.want, rows[0])
			assert.Zero(t, d.Skipped())
		})
	}
}

func TestRowDecoder_ReadErrorIsFatal(t *testing.T) {
	r := io.MultiReader(strings.NewReader("h\n1\n"), iotest.ErrReader(errors.New("connection reset by peer")))
	d := NewRowDecoder(r)

	row, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, RawRow{"1"}, row)

	_, err = d.Next()
	assert.ErrorIs(t, err, ErrStreamRead)
}

func TestRowDecoder_SmallReads(t *testing.T) {
	d := NewRowDecoder(iotest.HalfReader(strings.NewReader(sampleCSV(10))))
	rows := readAll(t, d)
	require.Len(t, rows, 10)
	assert.Equal(t, "100010", rows[9][0])
}

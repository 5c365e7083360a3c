package core

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBOMSkippingReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{name: "file with BOM", input: append([]byte{0xEF, 0xBB, 0xBF}, "hello,world"...), expected: "hello,world"},
		{name: "file without BOM", input: []byte("hello,world"), expected: "hello,world"},
		{name: "empty file", input: []byte{}, expected: ""},
		{name: "only BOM", input: []byte{0xEF, 0xBB, 0xBF}, expected: ""},
		{name: "partial BOM at start", input: []byte{0xEF, 0xBB, 'a'}, expected: string([]byte{0xEF, 0xBB, 'a'})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(newBOMSkippingReader(bytes.NewReader(tt.input)))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestUTF8Sanitizer(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{name: "valid ASCII", input: []byte("hello,world"), expected: "hello,world"},
		{name: "valid multibyte", input: []byte("Zoë,Müller"), expected: "Zoë,Müller"},
		{name: "invalid byte replaced", input: []byte{'h', 'e', 0x80, 'l', 'o'}, expected: "he?lo"},
		{name: "truncated sequence at EOF", input: []byte{'a', 0xE2, 0x82}, expected: "a??"},
		{name: "empty input", input: []byte{}, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(newUTF8Sanitizer(bytes.NewReader(tt.input)))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestUTF8Sanitizer_SplitAcrossReads(t *testing.T) {
	// OneByteReader forces every multi-byte rune to straddle reads.
	input := "€uro,naïve,日本"
	got, err := io.ReadAll(newUTF8Sanitizer(iotest.OneByteReader(strings.NewReader(input))))
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestUTF8Sanitizer_PropagatesReadError(t *testing.T) {
	r := io.MultiReader(strings.NewReader("abc"), iotest.ErrReader(io.ErrUnexpectedEOF))
	got, err := io.ReadAll(newUTF8Sanitizer(r))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "abc", string(got))
}

func TestIncompleteTail(t *testing.T) {
	assert.Equal(t, 0, incompleteTail([]byte("abc")))
	assert.Equal(t, 1, incompleteTail([]byte{'a', 0xE2}))
	assert.Equal(t, 2, incompleteTail([]byte{'a', 0xE2, 0x82}))
	assert.Equal(t, 0, incompleteTail([]byte{'a', 0xE2, 0x82, 0xAC}))
	assert.Equal(t, 3, incompleteTail([]byte{0xF0, 0x9F, 0x98}))
}

func TestWrapForStreaming(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, 'h', 'e', 0x80, 'l', 'o')

	reader := WrapForStreaming(bytes.NewReader(input))
	got, err := io.ReadAll(reader)
	require.NoError(t, err)

	assert.Equal(t, "he?lo", string(got))
	assert.Equal(t, int64(5), reader.BytesRead())
}

package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// RowDecoder yields CSV records one at a time from a byte stream.
// It is single-pass and never holds more than one record.
type RowDecoder struct {
	src     *countingReader
	csv     *csv.Reader
	started bool
	line    int
	skipped int
}

// NewRowDecoder wraps r for BOM stripping and UTF-8 sanitizing.
// Rows may have any number of fields; missing trailing columns read as "".
// Quotes are parsed leniently, so a stray quote such as O"Brien is kept as
// data instead of rejecting the row.
func NewRowDecoder(r io.Reader) *RowDecoder {
	src := WrapForStreaming(r)
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return &RowDecoder{src: src, csv: cr}
}

// Next returns the next data row, or io.EOF when the stream is exhausted.
// The first record is always treated as the header and discarded.
// Records the CSV parser still rejects are skipped; I/O failures wrap ErrStreamRead.
func (d *RowDecoder) Next() (RawRow, error) {
	for {
		rec, err := d.csv.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) && isSyntaxError(perr.Err) {
				// A malformed first record still counts as the header.
				d.line = perr.Line
				if d.started {
					d.skipped++
				}
				d.started = true
				continue
			}
			return nil, fmt.Errorf("%w: line %d: %w", ErrStreamRead, d.line+1, err)
		}

		d.line, _ = d.csv.FieldPos(0)
		if !d.started {
			d.started = true
			continue
		}
		return RawRow(rec), nil
	}
}

func isSyntaxError(err error) bool {
	return errors.Is(err, csv.ErrBareQuote) ||
		errors.Is(err, csv.ErrQuote) ||
		errors.Is(err, csv.ErrFieldCount)
}

// Skipped returns how many malformed records were dropped.
func (d *RowDecoder) Skipped() int { return d.skipped }

// BytesRead returns the number of input bytes consumed so far.
func (d *RowDecoder) BytesRead() int64 { return d.src.BytesRead() }

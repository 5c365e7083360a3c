package core

import (
	"fmt"
	"io"
	"os"
)

// SpillPattern is the temp file name pattern used for spilled uploads.
// The sweeper only removes files matching it.
const SpillPattern = "employee-import-*.csv"

// SpillFile is a request body copied to local disk. Close removes the file.
type SpillFile struct {
	f    *os.File
	size int64
}

// Spill copies r into a new temp file under dir and rewinds it for reading.
// An empty dir means os.TempDir. Failures wrap ErrStreamRead.
func Spill(dir string, r io.Reader) (*SpillFile, error) {
	f, err := os.CreateTemp(dir, SpillPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: create spill file: %w", ErrStreamRead, err)
	}

	sf := &SpillFile{f: f}
	n, err := io.Copy(f, r)
	if err != nil {
		_ = sf.Close()
		return nil, fmt.Errorf("%w: spill body: %w", ErrStreamRead, err)
	}
	sf.size = n

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = sf.Close()
		return nil, fmt.Errorf("%w: rewind spill file: %w", ErrStreamRead, err)
	}
	return sf, nil
}

func (s *SpillFile) Read(p []byte) (int, error) { return s.f.Read(p) }

// Size returns the number of bytes spilled.
func (s *SpillFile) Size() int64 { return s.size }

// Path returns the temp file location.
func (s *SpillFile) Path() string { return s.f.Name() }

// Close closes and deletes the temp file.
func (s *SpillFile) Close() error {
	closeErr := s.f.Close()
	if err := os.Remove(s.f.Name()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return closeErr
}

// Package csv parses the delimited Funko import format: one header
// row (discarded) followed by rows of
// id,name,model,price,releaseDate. The id column is ignored; imported
// Funkos always receive a freshly generated identifier.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Madirex/Funkos-Rest-Synchronous/internal/model"
)

// ErrOpen reports that the import source could not be read at all,
// as opposed to a single malformed row.
var ErrOpen = errors.New("cannot open import file")

// fieldCount is the fixed column count of the import format.
const fieldCount = 5

// RowError describes a single malformed row. The read as a whole can
// continue past it.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Reader lazily parses Funkos from an import file. Rows are decoded
// one at a time on each Next call; the file is never loaded whole.
type Reader struct {
	file    *os.File
	records *csv.Reader
	line    int
}

// Open opens the import file and discards the header row.
// A file that cannot be opened or whose header cannot be read fails
// the whole read with ErrOpen.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, path, err)
	}

	records := csv.NewReader(f)
	records.FieldsPerRecord = fieldCount
	records.TrimLeadingSpace = true

	if _, err := records.Read(); err != nil {
		_ = f.Close()
		if err == io.EOF {
			// An empty file has no rows to import.
			return &Reader{file: nil, records: nil, line: 1}, nil
		}
		return nil, fmt.Errorf("%w: %s: reading header: %v", ErrOpen, path, err)
	}

	return &Reader{file: f, records: records, line: 1}, nil
}

// Next parses the next row into a Funko. It returns io.EOF when the
// file is exhausted and a *RowError when the current row is malformed;
// callers decide whether to skip or abort on row errors.
func (r *Reader) Next() (model.Funko, error) {
	if r.records == nil {
		return model.Funko{}, io.EOF
	}

	record, err := r.records.Read()
	if err == io.EOF {
		return model.Funko{}, io.EOF
	}
	r.line++
	if err != nil {
		return model.Funko{}, &RowError{Line: r.line, Err: err}
	}

	return r.parse(record)
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}

func (r *Reader) parse(record []string) (model.Funko, error) {
	name := record[1]
	if name == "" {
		return model.Funko{}, &RowError{Line: r.line, Err: model.ErrEmptyName}
	}

	funkoModel, err := model.ParseModel(record[2])
	if err != nil {
		return model.Funko{}, &RowError{Line: r.line, Err: err}
	}

	price, err := strconv.ParseFloat(record[3], 64)
	if err != nil {
		return model.Funko{}, &RowError{Line: r.line, Err: fmt.Errorf("parsing price %q: %v", record[3], err)}
	}

	releaseDate, err := model.ParseDate(record[4])
	if err != nil {
		return model.Funko{}, &RowError{Line: r.line, Err: err}
	}

	return model.Funko{
		ID:          model.NewID(),
		Name:        name,
		Model:       funkoModel,
		Price:       price,
		ReleaseDate: releaseDate,
	}, nil
}

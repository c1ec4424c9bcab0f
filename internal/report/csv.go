// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package report

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/go-git/go-billy/v5"
	"github.com/ostafen/magicverify/internal/signature"
)

// Columns is the header of every report.
var Columns = []string{
	"FilePath",
	"Extension",
	"ExpectedMagic",
	"ActualMagic",
	"Pass",
	"IdentifiedExtension",
}

// Mode tells a TableWriter how to open its backing artifact.
type Mode int

const (
	// ModeOverwrite replaces the artifact with a new one holding the header
	// followed by the given rows.
	ModeOverwrite Mode = iota
	// ModeAppend adds rows to the artifact, creating it with a header if it
	// is missing or empty.
	ModeAppend
)

func (m Mode) String() string {
	if m == ModeAppend {
		return "append"
	}
	return "overwrite"
}

// TableWriter persists batches of rows. Implementations must write the
// header exactly once per artifact and must not leave a batch partially
// committed when they fail.
type TableWriter interface {
	WriteRows(rows [][]string, mode Mode) error
}

// Row converts a result into a report row, in Columns order.
func Row(r signature.Result) []string {
	return []string{
		r.Path,
		r.Extension,
		r.ExpectedMagic,
		r.ActualMagic,
		r.Verdict.String(),
		r.IdentifiedExtension,
	}
}

// CSVFile is a TableWriter backed by a CSV file.
type CSVFile struct {
	fs     billy.Filesystem
	path   string
	header []string
}

// NewCSVFile returns a writer for the CSV file at path.
func NewCSVFile(fsys billy.Filesystem, path string) *CSVFile {
	return &CSVFile{
		fs:     fsys,
		path:   path,
		header: Columns,
	}
}

// Path returns the location of the artifact.
func (f *CSVFile) Path() string {
	return f.path
}

func (f *CSVFile) WriteRows(rows [][]string, mode Mode) error {
	var err error
	switch mode {
	case ModeAppend:
		err = f.append(rows)
	default:
		err = f.overwrite(rows)
	}

	if err != nil {
		return &WriteError{Path: f.path, Mode: mode, Err: err}
	}
	return nil
}

// overwrite writes the new content to a temporary file in the target
// directory and renames it over the artifact.
func (f *CSVFile) overwrite(rows [][]string) error {
	data, err := encode(f.header, rows)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := f.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}

	tmp, err := f.fs.TempFile(dir, "."+filepath.Base(f.path)+".tmp-")
	if err != nil {
		return err
	}

	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = f.fs.Rename(tmp.Name(), f.path)
	}

	if err != nil {
		_ = f.fs.Remove(tmp.Name())
		return err
	}
	return nil
}

func (f *CSVFile) append(rows [][]string) error {
	var header []string

	finfo, err := f.fs.Stat(f.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		header = f.header
	case err != nil:
		return err
	case finfo.IsDir():
		return fmt.Errorf("%q is a directory", f.path)
	case finfo.Size() == 0:
		header = f.header
	default:
		if err := f.checkHeader(); err != nil {
			return err
		}
	}

	data, err := encode(header, rows)
	if err != nil {
		return err
	}

	out, err := f.fs.OpenFile(f.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return err
	}

	_, err = out.Write(data)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}

// checkHeader makes sure rows are never appended to a file holding a
// different table.
func (f *CSVFile) checkHeader() error {
	in, err := f.fs.Open(f.path)
	if err != nil {
		return err
	}
	defer in.Close()

	r := csv.NewReader(bufio.NewReader(in))
	r.FieldsPerRecord = -1

	got, err := r.Read()
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read existing header: %w", err)
	}

	if !slices.Equal(got, f.header) {
		return fmt.Errorf("existing header %v does not match %v", got, f.header)
	}
	return nil
}

func encode(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	if header != nil {
		if err := w.Write(header); err != nil {
			return nil, err
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

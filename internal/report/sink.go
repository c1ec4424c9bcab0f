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
	"errors"

	"github.com/ostafen/magicverify/internal/signature"
)

// DefaultBatchSize is the number of results buffered before a flush.
const DefaultBatchSize = 100

// ErrFinalized is returned when results are flushed after Finalize.
var ErrFinalized = errors.New("sink already finalized")

// Sink buffers results and commits them to a TableWriter in batches,
// so that memory stays bounded no matter how many files are scanned.
//
// The first commit of a sink overwrites the artifact, unless appending
// to an existing artifact was requested; every later commit appends.
// A Sink is not safe for concurrent use.
type Sink struct {
	w              TableWriter
	batchSize      int
	appendExisting bool

	buf       []signature.Result
	written   bool
	finalized bool

	flushes int
	rows    int
}

// NewSink returns a Sink flushing to w every batchSize results.
// Non-positive batch sizes are treated as 1.
func NewSink(w TableWriter, batchSize int, appendExisting bool) *Sink {
	batchSize = max(batchSize, 1)

	return &Sink{
		w:              w,
		batchSize:      batchSize,
		appendExisting: appendExisting,
		buf:            make([]signature.Result, 0, batchSize),
	}
}

// Offer buffers r until the next flush.
func (s *Sink) Offer(r signature.Result) {
	s.buf = append(s.buf, r)
}

// Pending returns the number of buffered results.
func (s *Sink) Pending() int {
	return len(s.buf)
}

// FlushIfDue commits the buffer once it holds at least a batch.
func (s *Sink) FlushIfDue() error {
	if s.finalized {
		return ErrFinalized
	}
	if len(s.buf) < s.batchSize {
		return nil
	}
	return s.flush()
}

// Finalize commits whatever is left in the buffer. Nothing is written
// when the buffer is empty. Calling Finalize again is a no-op.
func (s *Sink) Finalize() error {
	if s.finalized {
		return nil
	}
	s.finalized = true

	return s.flush()
}

func (s *Sink) mode() Mode {
	if s.written || s.appendExisting {
		return ModeAppend
	}
	return ModeOverwrite
}

func (s *Sink) flush() error {
	if len(s.buf) == 0 {
		return nil
	}
	rows := make([][]string, len(s.buf))
	for i, r := range s.buf {
		rows[i] = Row(r)
	}

	if err := s.w.WriteRows(rows, s.mode()); err != nil {
		return err
	}

	s.written = true
	s.flushes++
	s.rows += len(rows)

	clear(s.buf)
	s.buf = s.buf[:0]
	return nil
}

// Flushes returns the number of batches committed so far.
func (s *Sink) Flushes() int {
	return s.flushes
}

// Rows returns the number of rows committed so far.
func (s *Sink) Rows() int {
	return s.rows
}

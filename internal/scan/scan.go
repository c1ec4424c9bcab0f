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
package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/ostafen/magicverify/internal/env"
	"github.com/ostafen/magicverify/internal/report"
	"github.com/ostafen/magicverify/internal/signature"
	"github.com/ostafen/magicverify/internal/walk"
)

type Options struct {
	SignaturesFile string
	ReportFile     string
	Recursive      bool
	Identify       bool
	SkipUnknown    bool
	Append         bool
	BatchSize      int
	// Exclude lists files that are never checked, such as the run log.
	Exclude []string
	// Progress, if set, is called after every checked file.
	Progress func(Stats)
}

// Stats counts what a scan has seen so far.
type Stats struct {
	Scanned    int
	Skipped    int
	Passed     int
	Failed     int
	Unlisted   int
	Identified int
	ReadErrors int
	DirErrors  int
	BytesRead  int64
}

func (s *Stats) record(res signature.Result) {
	s.Scanned++

	switch res.Verdict {
	case signature.VerdictPass:
		s.Passed++
	case signature.VerdictFail:
		s.Failed++
	case signature.VerdictError:
		s.ReadErrors++
	default:
		s.Unlisted++
	}

	if res.Identified() {
		s.Identified++
	}
}

// Summary describes a completed (or failed) run.
type Summary struct {
	Stats
	State          State
	SignaturesFile string
	Signatures     int
	ReportFile     string
	Flushes        int
	Rows           int
	Duration       time.Duration
}

// Scanner checks files against a signature table and feeds the results
// to a sink. It holds no global state: everything it needs is passed to
// NewScanner.
type Scanner struct {
	fs     billy.Filesystem
	table  *signature.Table
	sink   *report.Sink
	logger *slog.Logger
	opts   Options

	exclude map[string]struct{}
	header  []byte
	stats   Stats
}

func NewScanner(fsys billy.Filesystem, table *signature.Table, sink *report.Sink, opts Options, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	exclude := make(map[string]struct{}, len(opts.Exclude))
	for _, p := range opts.Exclude {
		if p != "" {
			exclude[absPath(p)] = struct{}{}
		}
	}

	return &Scanner{
		fs:      fsys,
		table:   table,
		sink:    sink,
		logger:  logger,
		opts:    opts,
		exclude: exclude,
		header:  make([]byte, table.MaxBytes()),
	}
}

// Stats returns the counters accumulated so far.
func (s *Scanner) Stats() Stats {
	return s.stats
}

// Check reads the header of the file at path and matches it.
// A file that cannot be read yields a result with an error verdict.
func (s *Scanner) Check(path string) signature.Result {
	ext := extension(path)

	header, err := s.readHeader(path)
	if err != nil {
		s.logger.Warn("unable to read file header", "path", path, "err", err)
		return signature.ReadFailure(path, ext, s.table)
	}
	s.stats.BytesRead += int64(len(header))

	res := signature.Match(header, path, ext, s.table, s.opts.Identify)

	s.logger.Debug("file checked",
		"path", path,
		"expected", res.ExpectedMagic,
		"actual", res.ActualMagic,
		"pass", res.Verdict.String(),
		"identified", res.IdentifiedExtension,
	)
	return res
}

// readHeader reads up to MaxBytes() bytes from the start of the file.
// Files shorter than that yield a shorter header.
func (s *Scanner) readHeader(path string) ([]byte, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	n, err := io.ReadFull(f, s.header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, &ReadError{Path: path, Err: err}
	}
	return s.header[:n], nil
}

// ScanFile checks a single file, whatever its extension, and offers the
// result to the sink.
func (s *Scanner) ScanFile(path string) error {
	return s.emit(s.Check(path))
}

// ScanTree checks every file under root. Files with unlisted extensions
// are skipped without being opened when SkipUnknown is set.
// The scan stops early when ctx is done; buffered results are left in the
// sink for the caller to finalize.
func (s *Scanner) ScanTree(ctx context.Context, root string) error {
	for path, walkErr := range walk.Files(s.fs, root, s.opts.Recursive) {
		if err := ctx.Err(); err != nil {
			return err
		}

		var dirErr *walk.DirError
		switch {
		case errors.As(walkErr, &dirErr):
			s.stats.DirErrors++
			s.logger.Warn("unable to list directory", "path", dirErr.Path, "err", dirErr.Err)
			continue
		case s.excluded(path):
			s.logger.Debug("file excluded", "path", path)
			continue
		}

		ext := extension(path)
		if s.opts.SkipUnknown && !s.table.Has(ext) {
			s.stats.Skipped++
			continue
		}

		var res signature.Result
		if walkErr != nil {
			s.logger.Warn("unable to stat file", "path", path, "err", walkErr)
			res = signature.ReadFailure(path, ext, s.table)
		} else {
			res = s.Check(path)
		}

		if err := s.emit(res); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) emit(res signature.Result) error {
	s.stats.record(res)
	if s.opts.Progress != nil {
		s.opts.Progress(s.stats)
	}

	s.sink.Offer(res)
	return s.sink.FlushIfDue()
}

func (s *Scanner) excluded(path string) bool {
	_, ok := s.exclude[absPath(path)]
	return ok
}

// Run loads the signature table, checks target (a file or a directory)
// and writes the report. The sink is always finalized, also when the
// scan is interrupted by ctx, unless the report itself could not be
// written.
func Run(ctx context.Context, fsys billy.Filesystem, target string, opts Options, logger *slog.Logger) (*Summary, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	start := time.Now()
	sum := &Summary{
		State:      StateInit,
		ReportFile: opts.ReportFile,
	}

	enter := func(state State) {
		logger.Debug("state changed", "from", sum.State.String(), "to", state.String())
		sum.State = state
	}
	fail := func(err error) (*Summary, error) {
		enter(StateFailed)
		sum.Duration = time.Since(start)
		logger.Error("run failed", "err", err)
		return sum, err
	}

	enter(StateLoadingConfig)

	sigPath, err := signature.Locate(env.AppName, opts.SignaturesFile)
	if err != nil {
		return fail(err)
	}
	sum.SignaturesFile = sigPath

	table, err := signature.LoadFile(fsys, sigPath)
	if err != nil {
		return fail(err)
	}
	sum.Signatures = table.Len()

	logger.Info("signatures loaded",
		"file", sigPath,
		"count", table.Len(),
		"max_bytes", table.MaxBytes(),
	)

	finfo, err := fsys.Stat(target)
	if err != nil {
		return fail(&PathNotFoundError{Path: target, Err: err})
	}

	opts.Exclude = append(slices.Clone(opts.Exclude), opts.ReportFile)

	sink := report.NewSink(report.NewCSVFile(fsys, opts.ReportFile), opts.BatchSize, opts.Append)
	sc := NewScanner(fsys, table, sink, opts, logger)

	enter(StateScanning)

	logger.Info("scan started",
		"target", target,
		"dir", finfo.IsDir(),
		"recursive", opts.Recursive,
		"identify", opts.Identify,
		"skip_unknown", opts.SkipUnknown,
		"batch_size", opts.BatchSize,
		"append", opts.Append,
	)

	if finfo.IsDir() {
		err = sc.ScanTree(ctx, target)
	} else {
		err = sc.ScanFile(target)
	}

	var werr *report.WriteError
	if !errors.As(err, &werr) {
		enter(StateFinalizing)
		if ferr := sink.Finalize(); ferr != nil {
			err = errors.Join(err, ferr)
		}
	}

	sum.Stats = sc.Stats()
	sum.Flushes = sink.Flushes()
	sum.Rows = sink.Rows()
	sum.Duration = time.Since(start)

	if err != nil {
		return fail(err)
	}

	enter(StateDone)

	logger.Info("scan completed",
		"scanned", sum.Scanned,
		"skipped", sum.Skipped,
		"passed", sum.Passed,
		"failed", sum.Failed,
		"read_errors", sum.ReadErrors,
		"rows", sum.Rows,
		"flushes", sum.Flushes,
		"duration", sum.Duration,
	)
	return sum, nil
}

func extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func absPath(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return absPath
}

// FormatDurationHMS formats a time.Duration into HH:MM:SS string.
// Durations under a second are printed in seconds.
func FormatDurationHMS(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	totalSeconds := int64(d.Seconds())

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// SetupLogger initializes a slog.Logger writing to logFilePath, or
// discarding everything when the path is empty. Every record carries the
// run id. The returned file, if not nil, must be closed by the caller.
func SetupLogger(logFilePath string, minLevel slog.Level, runID string) (*slog.Logger, *os.File, error) {
	var writer io.Writer
	var file *os.File

	if logFilePath == "" {
		writer = io.Discard
	} else {
		logDir := filepath.Dir(logFilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %q: %w", logDir, err)
		}

		f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %q: %w", logFilePath, err)
		}
		writer = f
		file = f
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level:     minLevel,
		AddSource: true,
	})

	logger := slog.New(handler).With("run", runID)
	return logger, file, nil
}

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
package signature

import (
	"encoding/hex"
	"strings"
)

const (
	// NotApplicable marks a field with nothing to report.
	NotApplicable = "N/A"
	// Unknown is the identified extension of files that were not identified.
	Unknown = "Unknown"
)

// Verdict is the outcome of comparing a file against its expected signature.
type Verdict int

const (
	// VerdictNA means the extension is not listed, so there is nothing to test.
	VerdictNA Verdict = iota
	VerdictPass
	VerdictFail
	// VerdictError means the file header could not be read.
	VerdictError
)

func (v Verdict) String() string {
	switch v {
	case VerdictPass:
		return "true"
	case VerdictFail:
		return "false"
	case VerdictError:
		return "error"
	default:
		return NotApplicable
	}
}

// Result is the outcome of checking a single file.
type Result struct {
	Path                string
	Extension           string
	ExpectedMagic       string
	ActualMagic         string
	Verdict             Verdict
	IdentifiedExtension string
}

// Identified reports whether reverse identification found a match for a
// file that did not pass.
func (r Result) Identified() bool {
	return r.Verdict != VerdictPass && r.IdentifiedExtension != Unknown
}

// Match checks header, the leading bytes of the file at path, against the
// signature expected for ext.
//
// Only as many bytes as the expected signature declares are compared.
// When identify is set and the file either failed or has an unlisted
// extension, the header is also matched against every known signature.
// ActualMagic always covers t.MaxBytes() bytes, so that rows of the same
// report are comparable; it is N/A for shorter headers.
func Match(header []byte, path, ext string, t *Table, identify bool) Result {
	res := Result{
		Path:                path,
		Extension:           ext,
		ExpectedMagic:       NotApplicable,
		ActualMagic:         NotApplicable,
		Verdict:             VerdictNA,
		IdentifiedExtension: Unknown,
	}

	if n := t.MaxBytes(); n > 0 && len(header) >= n {
		res.ActualMagic = encodeHex(header[:n])
	}

	if expected, ok := t.entry(ext); ok {
		res.ExpectedMagic = expected.Hex
		res.Verdict = VerdictFail

		if t.Matches(header, ext) {
			res.Verdict = VerdictPass
			res.IdentifiedExtension = expected.Ext
		}
	}

	if identify && res.Verdict != VerdictPass {
		if id, ok := t.Identify(header); ok {
			res.IdentifiedExtension = id
		}
	}
	return res
}

// ReadFailure returns the row recorded for a file whose header could not
// be read.
func ReadFailure(path, ext string, t *Table) Result {
	expected, ok := t.Lookup(ext)
	if !ok {
		expected = NotApplicable
	}

	return Result{
		Path:                path,
		Extension:           ext,
		ExpectedMagic:       expected,
		ActualMagic:         NotApplicable,
		Verdict:             VerdictError,
		IdentifiedExtension: Unknown,
	}
}

func encodeHex(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

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
	"bytes"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/ostafen/magicverify/pkg/table"
)

// Entry is a single extension → signature association.
type Entry struct {
	Ext   string // lowercase, with the leading dot, e.g. ".png"
	Hex   string // uppercase hex of Bytes
	Bytes []byte
}

// Len returns the signature length in bytes.
func (e Entry) Len() int {
	return len(e.Bytes)
}

// Table is the immutable set of known signatures for a run.
type Table struct {
	entries  map[string]Entry
	maxBytes int

	// index groups extensions by signature; values are kept sorted so
	// that identical signatures resolve to the same extension on every run.
	index *table.PrefixTable[[]string]
}

// New validates raw and builds a Table from it. Keys are lowercased,
// values may use either hex case.
func New(raw map[string]string) (*Table, error) {
	if len(raw) == 0 {
		return nil, &ConfigError{Err: ErrNoSignatures}
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	t := &Table{
		entries: make(map[string]Entry, len(raw)),
		index:   table.New[[]string](),
	}

	for _, k := range keys {
		e, err := parseEntry(k, raw[k])
		if err != nil {
			return nil, &ConfigError{Err: err}
		}

		if _, dup := t.entries[e.Ext]; dup {
			return nil, &ConfigError{Err: fmt.Errorf("duplicate extension %q", e.Ext)}
		}
		t.entries[e.Ext] = e
		t.maxBytes = max(t.maxBytes, e.Len())

		exts, _ := t.index.Get(e.Bytes)
		exts = append(exts, e.Ext)
		slices.Sort(exts)
		t.index.Insert(e.Bytes, exts)
	}
	return t, nil
}

func parseEntry(key, value string) (Entry, error) {
	ext := strings.ToLower(strings.TrimSpace(key))
	if len(ext) < 2 || ext[0] != '.' {
		return Entry{}, fmt.Errorf("extension %q must start with a dot", key)
	}
	if strings.ContainsAny(ext[1:], "./\\") {
		return Entry{}, fmt.Errorf("extension %q contains a path separator or dot", key)
	}

	sig := strings.TrimSpace(value)
	if sig == "" {
		return Entry{}, fmt.Errorf("empty signature for %q", ext)
	}
	if len(sig)%2 != 0 {
		return Entry{}, fmt.Errorf("signature %q for %q has odd length", sig, ext)
	}

	b, err := hex.DecodeString(sig)
	if err != nil {
		return Entry{}, fmt.Errorf("signature %q for %q is not valid hex: %w", sig, ext, err)
	}

	return Entry{
		Ext:   ext,
		Hex:   strings.ToUpper(sig),
		Bytes: b,
	}, nil
}

// Lookup returns the expected signature, as uppercase hex, for ext.
func (t *Table) Lookup(ext string) (string, bool) {
	e, ok := t.entry(ext)
	return e.Hex, ok
}

func (t *Table) entry(ext string) (Entry, bool) {
	e, ok := t.entries[strings.ToLower(ext)]
	return e, ok
}

// Has reports whether ext is listed.
func (t *Table) Has(ext string) bool {
	_, ok := t.entry(ext)
	return ok
}

// MaxBytes returns the length of the longest signature. This is the number
// of header bytes that must be read from a file to test it against any entry.
func (t *Table) MaxBytes() int {
	return t.maxBytes
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns all entries sorted by extension.
func (t *Table) Entries() []Entry {
	entries := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Ext, b.Ext)
	})
	return entries
}

// Identify returns the extension whose signature is a prefix of header.
// When several signatures match, the longest one wins; extensions sharing
// the very same signature resolve to the lexicographically smallest one.
func (t *Table) Identify(header []byte) (string, bool) {
	exts, _, ok := t.index.Longest(header)
	if !ok || len(exts) == 0 {
		return "", false
	}
	return exts[0], true
}

// Matches reports whether header starts with the signature of ext.
func (t *Table) Matches(header []byte, ext string) bool {
	e, ok := t.entry(ext)
	return ok && bytes.HasPrefix(header, e.Bytes)
}

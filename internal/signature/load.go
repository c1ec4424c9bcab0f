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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-git/go-billy/v5"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a signature source.
type Format int

const (
	FormatJSON Format = iota
	FormatTOML
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// DefaultFileName is the name looked up when no signature file is given.
const DefaultFileName = "signatures.json"

// FormatOf infers the source format from the file extension. Anything
// that is not TOML or YAML is parsed as JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Locate resolves the signature file to use. An explicit path is returned
// as is. Otherwise the XDG config directories are searched for
// <appName>/signatures.json, falling back to ./signatures.json.
func Locate(appName, path string) (string, error) {
	if path != "" {
		return path, nil
	}

	if p, err := xdg.SearchConfigFile(filepath.Join(appName, DefaultFileName)); err == nil {
		return p, nil
	}

	if _, err := os.Stat(DefaultFileName); err == nil {
		return DefaultFileName, nil
	}
	return "", &ConfigError{
		Source: DefaultFileName,
		Err:    errors.New("no signature file found in the config directories or in the working directory"),
	}
}

// LoadFile reads, decodes and validates the signature file at path.
func LoadFile(fsys billy.Basic, path string) (*Table, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, &ConfigError{Source: path, Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &ConfigError{Source: path, Err: err}
	}

	raw, err := Decode(data, FormatOf(path))
	if err != nil {
		return nil, &ConfigError{Source: path, Err: err}
	}

	t, err := New(raw)
	if err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			cerr.Source = path
		}
		return nil, err
	}
	return t, nil
}

// Decode parses a flat extension → hex mapping encoded as format.
// Duplicate keys are rejected.
func Decode(data []byte, format Format) (map[string]string, error) {
	switch format {
	case FormatTOML:
		var m map[string]string
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		return m, nil
	case FormatYAML:
		var m map[string]string
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		return m, nil
	default:
		return decodeJSON(data)
	}
}

// decodeJSON walks the object token by token, since encoding/json
// silently keeps the last of duplicated keys.
func decodeJSON(data []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("failed to parse JSON: top-level value must be an object")
	}

	m := make(map[string]string)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		key := tok.(string)

		var value string
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("failed to parse JSON value of %q: %w", key, err)
		}

		if _, dup := m[key]; dup {
			return nil, fmt.Errorf("duplicate key %q", key)
		}
		m[key] = value
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("failed to parse JSON: unexpected data after the top-level object")
	}
	return m, nil
}

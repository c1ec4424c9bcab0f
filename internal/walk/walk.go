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
package walk

import (
	"fmt"
	"iter"
	"os"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// DirError reports a directory whose entries could not be listed.
type DirError struct {
	Path string
	Err  error
}

func (e *DirError) Error() string {
	return fmt.Sprintf("failed to list directory %q: %s", e.Path, e.Err)
}

func (e *DirError) Unwrap() error {
	return e.Err
}

// Files returns a lazy sequence of the regular files under root, in
// lexical order. Subdirectories are visited only when recursive is set.
// Symbolic links are followed when they point to regular files; linked
// directories are never entered.
//
// An error that prevents inspecting an entry is yielded along with the
// entry path, and the walk goes on with the next entry. Directories that
// cannot be listed are reported with a *DirError.
func Files(fsys billy.Filesystem, root string, recursive bool) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		visit(fsys, root, recursive, yield)
	}
}

// visit returns false once the consumer stops the iteration.
func visit(fsys billy.Filesystem, dir string, recursive bool, yield func(string, error) bool) bool {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return yield(dir, &DirError{Path: dir, Err: err})
	}

	slices.SortFunc(entries, func(a, b os.FileInfo) int {
		return strings.Compare(a.Name(), b.Name())
	})

	for _, info := range entries {
		path := fsys.Join(dir, info.Name())

		if info.IsDir() {
			if recursive && !visit(fsys, path, recursive, yield) {
				return false
			}
			continue
		}

		ok, err := isRegular(fsys, path, info)
		if !ok && err == nil {
			continue
		}
		if !yield(path, err) {
			return false
		}
	}
	return true
}

func isRegular(fsys billy.Filesystem, path string, info os.FileInfo) (bool, error) {
	if info.Mode()&os.ModeSymlink == 0 {
		return info.Mode().IsRegular(), nil
	}

	target, err := fsys.Stat(path)
	if err != nil {
		return false, err
	}
	return target.Mode().IsRegular(), nil
}

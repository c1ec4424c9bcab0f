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
package pbar

import (
	"fmt"
	"io"
	"time"
)

const MinRefreshRate = time.Millisecond * 500

// Counters is a snapshot of what a scan has processed so far.
type Counters struct {
	Files  int
	Passed int
	Failed int
	Errors int
}

// ProgressLine renders a single, continuously rewritten status line.
// The total amount of work is unknown, since files are enumerated lazily,
// so only counts and throughput are shown.
type ProgressLine struct {
	out            io.Writer
	counters       Counters
	startTime      time.Time
	lastUpdateTime time.Time
	lastFiles      int
}

// New returns a ProgressLine writing to out.
func New(out io.Writer) *ProgressLine {
	return &ProgressLine{
		out:       out,
		startTime: time.Now(),
	}
}

// Update records c and redraws the line at most every MinRefreshRate.
func (p *ProgressLine) Update(c Counters) {
	p.counters = c
	p.Render(false)
}

// Render prints the progress line; unless force is set, calls closer than
// MinRefreshRate to the previous one are ignored.
func (p *ProgressLine) Render(force bool) {
	now := time.Now()
	if !force && !p.lastUpdateTime.IsZero() && now.Sub(p.lastUpdateTime) < MinRefreshRate {
		return
	}

	since := p.lastUpdateTime
	if since.IsZero() {
		since = p.startTime
	}

	var rate float64
	if elapsed := now.Sub(since).Seconds(); elapsed > 0 {
		rate = float64(p.counters.Files-p.lastFiles) / elapsed
	}

	p.lastUpdateTime = now
	p.lastFiles = p.counters.Files

	// \r moves the cursor back to the start of the line; the trailing
	// spaces clear leftovers of a previous, longer line.
	fmt.Fprintf(p.out, "\r[INFO] Progress: %d files | %d passed | %d failed | %d errors | @ %.1f files/s    ",
		p.counters.Files,
		p.counters.Passed,
		p.counters.Failed,
		p.counters.Errors,
		rate,
	)
}

// Finish draws the final state and moves to the next line.
func (p *ProgressLine) Finish() {
	p.Render(true)
	fmt.Fprintln(p.out)
}

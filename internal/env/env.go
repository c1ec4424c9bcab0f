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
package env

import (
	"log/slog"
	"os"
	"os/user"
	"runtime"
)

const AppName = "magicverify"

// Set at build time with -ldflags "-X github.com/ostafen/magicverify/internal/env.Version=..."
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

// ExecEnv describes the environment a run executes in, as log attributes.
func ExecEnv() []slog.Attr {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown_host"
	}

	uid := "unknown"
	if u, err := user.Current(); err == nil {
		uid = u.Uid
	}

	return []slog.Attr{
		slog.String("app", AppName),
		slog.String("version", Version),
		slog.String("commit", CommitHash),
		slog.String("os", runtime.GOOS),
		slog.String("arch", runtime.GOARCH),
		slog.String("go", runtime.Version()),
		slog.String("host", host),
		slog.String("uid", uid),
	}
}

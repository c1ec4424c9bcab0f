package pbar_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ostafen/magicverify/pkg/pbar"
	"github.com/stretchr/testify/require"
)

func TestProgressLine(t *testing.T) {
	var buf bytes.Buffer
	p := pbar.New(&buf)

	p.Update(pbar.Counters{Files: 1, Passed: 1})
	p.Update(pbar.Counters{Files: 2, Passed: 1, Failed: 1})
	p.Finish()

	out := buf.String()
	require.Equal(t, 2, strings.Count(out, "\r"))
	require.Contains(t, out, "1 files | 1 passed | 0 failed | 0 errors")
	require.Contains(t, out, "2 files | 1 passed | 1 failed | 0 errors")
	require.True(t, strings.HasSuffix(out, "\n"))
}

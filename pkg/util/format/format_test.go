package format_test

import (
	"testing"

	"github.com/ostafen/magicverify/pkg/util/format"
	"github.com/stretchr/testify/require"
)

func TestFormatBytes(t *testing.T) {
	require.Equal(t, "0B", format.FormatBytes(0))
	require.Equal(t, "1023B", format.FormatBytes(1023))
	require.Equal(t, "1KB", format.FormatBytes(1024))
	require.Equal(t, "1.50KB", format.FormatBytes(1536))
	require.Equal(t, "4MB", format.FormatBytes(4*1024*1024))
	require.Equal(t, "2GB", format.FormatBytes(2<<30))
	require.Equal(t, "2048TB", format.FormatBytes(2<<50))
}

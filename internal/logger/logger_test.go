package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/ostafen/magicverify/internal/logger"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, logger.DebugLevel, logger.ParseLevel("debug"))
	require.Equal(t, logger.WarnLevel, logger.ParseLevel("WARN"))
	require.Equal(t, logger.ErrorLevel, logger.ParseLevel("ERROR"))
	require.Equal(t, logger.InfoLevel, logger.ParseLevel("bogus"))

	require.Equal(t, slog.LevelWarn, logger.WarnLevel.SlogLevel())
	require.Equal(t, slog.LevelInfo, logger.InfoLevel.SlogLevel())
}

func TestLogger(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	l := logger.New(&buf, logger.InfoLevel)

	l.Debugf("hidden %d", 1)
	l.Infof("scanned %d files", 3)
	l.Warn("careful")

	require.Equal(t, "[INFO] scanned 3 files\n[WARN] careful\n", buf.String())
}

package cmd

import (
	"testing"

	"github.com/ostafen/magicverify/internal/logger"
	"github.com/ostafen/magicverify/internal/report"
	"github.com/stretchr/testify/require"
)

func TestParseOptions_Defaults(t *testing.T) {
	cmd := DefineScanCommand()

	opts, logOpts, err := parseOptions(cmd)
	require.NoError(t, err)

	require.Equal(t, DefaultReportFile, opts.ReportFile)
	require.Equal(t, report.DefaultBatchSize, opts.BatchSize)
	require.False(t, opts.Recursive)
	require.False(t, opts.Identify)
	require.False(t, opts.SkipUnknown)
	require.False(t, opts.Append)
	require.Empty(t, opts.SignaturesFile)

	require.Equal(t, "signature_report.log", logOpts.path)
	require.Equal(t, logger.InfoLevel, logOpts.level)
}

func TestParseOptions_Flags(t *testing.T) {
	cmd := DefineScanCommand()
	require.NoError(t, cmd.ParseFlags([]string{
		"-r", "-i", "-s", "-a",
		"-b", "2",
		"-c", "sigs.toml",
		"-o", "out/report.csv",
		"--log-level", "debug",
	}))

	opts, logOpts, err := parseOptions(cmd)
	require.NoError(t, err)

	require.True(t, opts.Recursive)
	require.True(t, opts.Identify)
	require.True(t, opts.SkipUnknown)
	require.True(t, opts.Append)
	require.Equal(t, 2, opts.BatchSize)
	require.Equal(t, "sigs.toml", opts.SignaturesFile)
	require.Equal(t, "out/report.csv", opts.ReportFile)
	require.Equal(t, "out/report.log", logOpts.path)
	require.Equal(t, logger.DebugLevel, logOpts.level)
}

func TestParseOptions_NoLog(t *testing.T) {
	cmd := DefineScanCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--no-log", "--log-file", "x.log"}))

	_, logOpts, err := parseOptions(cmd)
	require.NoError(t, err)
	require.Empty(t, logOpts.path)
}

func TestParseOptions_InvalidBatchSize(t *testing.T) {
	for _, size := range []string{"0", "-3"} {
		cmd := DefineScanCommand()
		require.NoError(t, cmd.ParseFlags([]string{"--batch-size=" + size}))

		_, _, err := parseOptions(cmd)
		require.Error(t, err)
	}
}

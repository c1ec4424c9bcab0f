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
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/ostafen/magicverify/internal/env"
	"github.com/ostafen/magicverify/internal/fs"
	"github.com/ostafen/magicverify/internal/logger"
	"github.com/ostafen/magicverify/internal/report"
	"github.com/ostafen/magicverify/internal/scan"
	"github.com/ostafen/magicverify/internal/signature"
	"github.com/ostafen/magicverify/pkg/pbar"
	"github.com/ostafen/magicverify/pkg/util/format"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const DefaultReportFile = "signature_report.csv"

func DefineScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Verify the signatures of a file or of the files in a directory",
		Long: `The 'scan' command checks that every file starts with the signature configured for its extension.
The result of each check is written to a CSV report with the columns
FilePath, Extension, ExpectedMagic, ActualMagic, Pass and IdentifiedExtension.
With --identify, files that fail (or whose extension is not configured) are matched
against every known signature to find out what they actually are.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunScan,
	}

	cmd.Flags().StringP("signatures", "c", "", "path to the signature file (.json, .toml or .yaml)")
	cmd.Flags().StringP("output", "o", DefaultReportFile, "path of the CSV report")
	cmd.Flags().BoolP("recursive", "r", false, "scan subdirectories")
	cmd.Flags().BoolP("identify", "i", false, "identify files that do not match their extension")
	cmd.Flags().BoolP("skip-unknown", "s", false, "skip files whose extension is not configured")
	cmd.Flags().IntP("batch-size", "b", report.DefaultBatchSize, "number of results buffered before writing to the report")
	cmd.Flags().BoolP("append", "a", false, "append to an existing report instead of overwriting it")
	cmd.Flags().String("log-file", "", "path of the detailed scan log (default: report path with a .log extension)")
	cmd.Flags().Bool("no-log", false, "disable the detailed scan log")
	cmd.Flags().String("log-level", "INFO", "minimum level of the detailed scan log (DEBUG, INFO, WARN, ERROR)")
	cmd.Flags().Bool("no-progress", false, "do not display the progress line")

	return cmd
}

type logOptions struct {
	path  string
	level logger.Level
}

func RunScan(cmd *cobra.Command, args []string) error {
	target := args[0]

	opts, logOpts, err := parseOptions(cmd)
	if err != nil {
		return err
	}

	PrintLogo()

	runID := uuid.NewString()

	slogger, logFile, err := scan.SetupLogger(logOpts.path, logOpts.level.SlogLevel(), runID)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}
	slogger.LogAttrs(cmd.Context(), slog.LevelInfo, "execution environment", env.ExecEnv()...)

	console := logger.New(os.Stdout, logger.InfoLevel)

	console.Info("Starting signature verification...")
	console.Infof("Run: \t%s", runID)
	console.Infof("Source: \t%s", absPath(target))
	console.Infof("Report: \t%s", absPath(opts.ReportFile))

	outLog := "disabled"
	if logOpts.path != "" {
		outLog = absPath(logOpts.path)
		opts.Exclude = append(opts.Exclude, logOpts.path)
	}
	console.Infof("Output Log: \t%s", outLog)

	var bar *pbar.ProgressLine
	if noProgress, _ := cmd.Flags().GetBool("no-progress"); !noProgress && term.IsTerminal(int(os.Stdout.Fd())) {
		bar = pbar.New(os.Stdout)
		opts.Progress = func(s scan.Stats) {
			bar.Update(pbar.Counters{
				Files:  s.Scanned,
				Passed: s.Passed,
				Failed: s.Failed,
				Errors: s.ReadErrors,
			})
		}
	}

	sum, err := scan.Run(cmd.Context(), fs.OS(), target, opts, slogger)
	if bar != nil {
		bar.Finish()
	}

	if err == nil || sum.Scanned > 0 {
		printSummary(console, sum)
	}

	if err != nil {
		console.Error(describeError(err))
		return err
	}
	return nil
}

func parseOptions(cmd *cobra.Command) (scan.Options, logOptions, error) {
	signaturesFile, _ := cmd.Flags().GetString("signatures")
	reportFile, _ := cmd.Flags().GetString("output")
	recursive, _ := cmd.Flags().GetBool("recursive")
	identify, _ := cmd.Flags().GetBool("identify")
	skipUnknown, _ := cmd.Flags().GetBool("skip-unknown")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	appendReport, _ := cmd.Flags().GetBool("append")

	logFile, _ := cmd.Flags().GetString("log-file")
	disableLog, _ := cmd.Flags().GetBool("no-log")
	logLevel, _ := cmd.Flags().GetString("log-level")

	if batchSize <= 0 {
		return scan.Options{}, logOptions{}, fmt.Errorf("batch size must be greater than 0, got %d", batchSize)
	}
	if reportFile == "" {
		return scan.Options{}, logOptions{}, errors.New("report path cannot be empty")
	}

	if disableLog {
		logFile = ""
	} else if logFile == "" {
		logFile = strings.TrimSuffix(reportFile, filepath.Ext(reportFile)) + ".log"
	}

	return scan.Options{
			SignaturesFile: signaturesFile,
			ReportFile:     reportFile,
			Recursive:      recursive,
			Identify:       identify,
			SkipUnknown:    skipUnknown,
			Append:         appendReport,
			BatchSize:      batchSize,
		}, logOptions{
			path:  logFile,
			level: logger.ParseLevel(logLevel),
		}, nil
}

func printSummary(console *logger.Logger, sum *scan.Summary) {
	console.Infof("Scan %s!", sum.State)
	console.Infof("Signatures: \t%d (%s)", sum.Signatures, sum.SignaturesFile)
	console.Infof("Files scanned: \t%d", sum.Scanned)
	console.Infof("Files skipped: \t%d", sum.Skipped)
	console.Infof("Passed: \t%s", color.GreenString("%d", sum.Passed))
	console.Infof("Failed: \t%s", color.RedString("%d", sum.Failed))
	console.Infof("Not configured: \t%d", sum.Unlisted)
	console.Infof("Identified: \t%d", sum.Identified)

	if sum.ReadErrors > 0 || sum.DirErrors > 0 {
		console.Warnf("Unreadable: \t%d files, %d directories", sum.ReadErrors, sum.DirErrors)
	}

	console.Infof("Header data: \t%s", format.FormatBytes(sum.BytesRead))
	console.Infof("Duration: \t%s", scan.FormatDurationHMS(sum.Duration))
	console.Infof("Report saved to: \t%s (%d rows, %d writes)", absPath(sum.ReportFile), sum.Rows, sum.Flushes)
}

func describeError(err error) string {
	var (
		cerr *signature.ConfigError
		perr *scan.PathNotFoundError
		werr *report.WriteError
	)

	switch {
	case errors.As(err, &cerr):
		return "Unable to load signatures: " + cerr.Error()
	case errors.As(err, &perr):
		return "Nothing to scan: " + perr.Error()
	case errors.As(err, &werr):
		return "Unable to write the report, the scan was aborted: " + werr.Error()
	default:
		return "Scan interrupted: " + err.Error()
	}
}

func absPath(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func PrintLogo() {
	fmt.Println("                         _                       _  __")
	fmt.Println(" _ __ ___   __ _  __ _(_) ___ __   _____ _ __(_)/ _|_   _")
	fmt.Println("| '_ ` _ \\ / _` |/ _` | |/ __|\\ \\ / / _ \\ '__| | |_| | | |")
	fmt.Println("| | | | | | (_| | (_| | | (__  \\ V /  __/ |  | |  _| |_| |")
	fmt.Println("|_| |_| |_|\\__,_|\\__, |_|\\___|  \\_/ \\___|_|  |_|_|  \\__, |")
	fmt.Println("                 |___/                              |___/")
	fmt.Println()
	fmt.Println("File signature verification tool")
	fmt.Println()
	fmt.Printf("Version:   %s\n", env.Version)
	fmt.Printf("Commit:    %s\n", env.CommitHash)
	fmt.Printf("Build Time: %s\n", env.BuildTime)
	fmt.Println(" ")
}

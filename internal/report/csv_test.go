package report_test

import (
	"errors"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/ostafen/magicverify/internal/report"
	"github.com/ostafen/magicverify/internal/signature"
	"github.com/stretchr/testify/require"
)

const header = "FilePath,Extension,ExpectedMagic,ActualMagic,Pass,IdentifiedExtension\n"

func TestCSVFile_OverwriteThenAppend(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "out/report.csv", []byte("stale content\n"), 0644))

	w := report.NewCSVFile(fsys, "out/report.csv")

	s := report.NewSink(w, 2, false)
	offerAll(t, s, results(5))

	data, err := util.ReadFile(fsys, "out/report.csv")
	require.NoError(t, err)

	expected := header +
		"f0.png,.png,89504E47,89504E47,true,.png\n" +
		"f1.png,.png,89504E47,89504E47,true,.png\n" +
		"f2.png,.png,89504E47,89504E47,true,.png\n" +
		"f3.png,.png,89504E47,89504E47,true,.png\n" +
		"f4.png,.png,89504E47,89504E47,true,.png\n"
	require.Equal(t, expected, string(data))

	// no temporary files are left behind
	entries, err := fsys.ReadDir("out")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestCSVFile_AppendCreatesHeader(t *testing.T) {
	fsys := memfs.New()
	w := report.NewCSVFile(fsys, "report.csv")

	require.NoError(t, w.WriteRows([][]string{{"a", "b", "c", "d", "e", "f"}}, report.ModeAppend))
	require.NoError(t, w.WriteRows([][]string{{"g", "h", "i", "j", "k", "l"}}, report.ModeAppend))

	data, err := util.ReadFile(fsys, "report.csv")
	require.NoError(t, err)
	require.Equal(t, header+"a,b,c,d,e,f\ng,h,i,j,k,l\n", string(data))
}

func TestCSVFile_AppendToEmptyFile(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "report.csv", nil, 0644))

	w := report.NewCSVFile(fsys, "report.csv")
	require.NoError(t, w.WriteRows([][]string{{"a", "b", "c", "d", "e", "f"}}, report.ModeAppend))

	data, err := util.ReadFile(fsys, "report.csv")
	require.NoError(t, err)
	require.Equal(t, header+"a,b,c,d,e,f\n", string(data))
}

func TestCSVFile_AppendHeaderMismatch(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "report.csv", []byte("Name,Size\nx,1\n"), 0644))

	w := report.NewCSVFile(fsys, "report.csv")
	err := w.WriteRows([][]string{{"a", "b", "c", "d", "e", "f"}}, report.ModeAppend)
	require.Error(t, err)

	var werr *report.WriteError
	require.True(t, errors.As(err, &werr))
	require.Equal(t, "report.csv", werr.Path)
	require.Equal(t, report.ModeAppend, werr.Mode)

	data, err := util.ReadFile(fsys, "report.csv")
	require.NoError(t, err)
	require.Equal(t, "Name,Size\nx,1\n", string(data))
}

func TestCSVFile_Reproducible(t *testing.T) {
	fsys := memfs.New()
	res := results(7)

	var outputs []string
	for range 2 {
		s := report.NewSink(report.NewCSVFile(fsys, "report.csv"), 3, false)
		offerAll(t, s, res)

		data, err := util.ReadFile(fsys, "report.csv")
		require.NoError(t, err)
		outputs = append(outputs, string(data))
	}
	require.Equal(t, outputs[0], outputs[1])
}

func TestCSVFile_QuotesFields(t *testing.T) {
	fsys := memfs.New()
	w := report.NewCSVFile(fsys, "report.csv")

	s := report.NewSink(w, 1, false)
	s.Offer(signature.Result{
		Path:                "dir/with,comma.png",
		Extension:           ".png",
		ExpectedMagic:       "89504E47",
		ActualMagic:         signature.NotApplicable,
		Verdict:             signature.VerdictError,
		IdentifiedExtension: signature.Unknown,
	})
	require.NoError(t, s.Finalize())

	data, err := util.ReadFile(fsys, "report.csv")
	require.NoError(t, err)
	require.Equal(t, header+"\"dir/with,comma.png\",.png,89504E47,N/A,error,Unknown\n", string(data))
}

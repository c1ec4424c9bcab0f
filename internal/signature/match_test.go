package signature_test

import (
	"encoding/hex"
	"testing"

	"github.com/ostafen/magicverify/internal/signature"
	"github.com/stretchr/testify/require"
)

func mustTable(t *testing.T, raw map[string]string) *signature.Table {
	t.Helper()

	tb, err := signature.New(raw)
	require.NoError(t, err)
	return tb
}

func TestMatch_Pass(t *testing.T) {
	tb := mustTable(t, map[string]string{".png": "89504E47"})

	res := signature.Match([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "a.png", ".png", tb, false)
	require.Equal(t, signature.VerdictPass, res.Verdict)
	require.Equal(t, "89504E47", res.ExpectedMagic)
	require.Equal(t, "89504E47", res.ActualMagic)
	require.Equal(t, ".png", res.IdentifiedExtension)
	require.False(t, res.Identified())
}

func TestMatch_Fail(t *testing.T) {
	tb := mustTable(t, map[string]string{".png": "89504E47"})

	res := signature.Match([]byte{0, 0, 0, 0}, "b.png", ".png", tb, false)
	require.Equal(t, signature.VerdictFail, res.Verdict)
	require.Equal(t, "00000000", res.ActualMagic)
	require.Equal(t, signature.Unknown, res.IdentifiedExtension)
}

func TestMatch_Identify(t *testing.T) {
	tb := mustTable(t, map[string]string{".png": "89504E47", ".jpg": "FFD8FF"})

	header := []byte{0xFF, 0xD8, 0xFF, 0x00}

	res := signature.Match(header, "x.png", ".png", tb, true)
	require.Equal(t, signature.VerdictFail, res.Verdict)
	require.Equal(t, ".jpg", res.IdentifiedExtension)
	require.Equal(t, "FFD8FF00", res.ActualMagic)
	require.True(t, res.Identified())

	res = signature.Match(header, "x.png", ".png", tb, false)
	require.Equal(t, signature.Unknown, res.IdentifiedExtension)

	res = signature.Match(header, "x.bin", ".bin", tb, true)
	require.Equal(t, signature.VerdictNA, res.Verdict)
	require.Equal(t, signature.NotApplicable, res.ExpectedMagic)
	require.Equal(t, ".jpg", res.IdentifiedExtension)
}

func TestMatch_PrefixComparison(t *testing.T) {
	tb := mustTable(t, map[string]string{".jpg": "FFD8FF", ".gif": "474946383961"})

	// only the three declared bytes are compared
	res := signature.Match([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, "a.jpg", ".JPG", tb, false)
	require.Equal(t, signature.VerdictPass, res.Verdict)
	require.Equal(t, "FFD8FFE00010", res.ActualMagic)
	require.Len(t, res.ActualMagic, 2*tb.MaxBytes())
}

func TestMatch_ShortHeader(t *testing.T) {
	tb := mustTable(t, map[string]string{".jpg": "FFD8FF", ".gif": "474946383961"})

	// long enough for the expected signature but not for the widest one
	res := signature.Match([]byte{0xFF, 0xD8, 0xFF}, "a.jpg", ".jpg", tb, false)
	require.Equal(t, signature.VerdictPass, res.Verdict)
	require.Equal(t, signature.NotApplicable, res.ActualMagic)

	// shorter than the expected signature
	res = signature.Match([]byte{0xFF, 0xD8}, "a.jpg", ".jpg", tb, true)
	require.Equal(t, signature.VerdictFail, res.Verdict)
	require.Equal(t, signature.NotApplicable, res.ActualMagic)
	require.Equal(t, signature.Unknown, res.IdentifiedExtension)
}

func TestMatch_EmptyFile(t *testing.T) {
	tb := mustTable(t, map[string]string{".png": "89504E47"})

	res := signature.Match(nil, "empty.png", ".png", tb, true)
	require.Equal(t, signature.VerdictFail, res.Verdict)
	require.Equal(t, signature.NotApplicable, res.ActualMagic)

	res = signature.Match(nil, "empty.txt", ".txt", tb, true)
	require.Equal(t, signature.VerdictNA, res.Verdict)
	require.Equal(t, signature.NotApplicable, res.ActualMagic)
	require.Equal(t, signature.Unknown, res.IdentifiedExtension)
}

func TestMatch_AllConfiguredSignaturesPass(t *testing.T) {
	raw := map[string]string{
		".png":    "89504E470D0A1A0A",
		".jpg":    "ffd8ff",
		".pdf":    "25504446",
		".zip":    "504B0304",
		".gz":     "1F8B",
		".sqlite": "53514C69746520666F726D6174203300",
	}
	tb := mustTable(t, raw)

	for ext := range raw {
		e, ok := tb.Lookup(ext)
		require.True(t, ok)

		header := make([]byte, tb.MaxBytes())
		n := copy(header, decode(t, e))

		res := signature.Match(header, "f"+ext, ext, tb, true)
		require.Equal(t, signature.VerdictPass, res.Verdict, ext)
		require.Equal(t, ext, res.IdentifiedExtension, ext)
		require.Len(t, res.ActualMagic, 2*tb.MaxBytes(), ext)
		require.Equal(t, e, res.ActualMagic[:2*n], ext)
	}
}

func TestReadFailure(t *testing.T) {
	tb := mustTable(t, map[string]string{".png": "89504E47"})

	res := signature.ReadFailure("a.png", ".png", tb)
	require.Equal(t, signature.VerdictError, res.Verdict)
	require.Equal(t, "89504E47", res.ExpectedMagic)
	require.Equal(t, signature.NotApplicable, res.ActualMagic)
	require.Equal(t, "error", res.Verdict.String())

	res = signature.ReadFailure("a.bin", ".bin", tb)
	require.Equal(t, signature.NotApplicable, res.ExpectedMagic)
}

func TestVerdict_String(t *testing.T) {
	require.Equal(t, "true", signature.VerdictPass.String())
	require.Equal(t, "false", signature.VerdictFail.String())
	require.Equal(t, "N/A", signature.VerdictNA.String())
}

func decode(t *testing.T, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

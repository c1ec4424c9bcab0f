package signature_test

import (
	"errors"
	"testing"

	"github.com/ostafen/magicverify/internal/signature"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tb, err := signature.New(map[string]string{
		".png":  "89504e47",
		".JPG":  "FFD8FF",
		".gif":  "474946383961",
		".jpeg": "FFD8FF",
	})
	require.NoError(t, err)

	require.Equal(t, 4, tb.Len())
	require.Equal(t, 6, tb.MaxBytes())

	hex, ok := tb.Lookup(".png")
	require.True(t, ok)
	require.Equal(t, "89504E47", hex)

	hex, ok = tb.Lookup(".jpg")
	require.True(t, ok)
	require.Equal(t, "FFD8FF", hex)

	_, ok = tb.Lookup(".txt")
	require.False(t, ok)

	require.True(t, tb.Has(".PNG"))

	entries := tb.Entries()
	exts := make([]string, len(entries))
	for i, e := range entries {
		exts[i] = e.Ext
	}
	require.Equal(t, []string{".gif", ".jpeg", ".jpg", ".png"}, exts)
}

func TestNew_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"empty":          {},
		"odd length":     {".png": "89504E4"},
		"not hex":        {".png": "89504EZZ"},
		"empty value":    {".png": ""},
		"missing dot":    {"png": "89504E47"},
		"only dot":       {".": "89504E47"},
		"path separator": {".p/g": "89504E47"},
		"duplicate":      {".png": "89504E47", ".PNG": "89504E47"},
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := signature.New(raw)
			require.Error(t, err)

			var cerr *signature.ConfigError
			require.True(t, errors.As(err, &cerr))
		})
	}

	_, err := signature.New(nil)
	require.ErrorIs(t, err, signature.ErrNoSignatures)
}

func TestTable_Identify(t *testing.T) {
	tb, err := signature.New(map[string]string{
		".png":  "89504E47",
		".jpg":  "FFD8FF",
		".jpeg": "FFD8FF",
		".jfif": "FFD8FFE0",
		".zip":  "504B",
		".docx": "504B0304",
	})
	require.NoError(t, err)

	cases := []struct {
		header []byte
		ext    string
		ok     bool
	}{
		{[]byte{0x89, 0x50, 0x4E, 0x47, 0x0D}, ".png", true},
		// longest signature wins
		{[]byte{0xFF, 0xD8, 0xFF, 0xE0}, ".jfif", true},
		// identical signatures resolve to the smallest extension
		{[]byte{0xFF, 0xD8, 0xFF, 0xDB}, ".jpeg", true},
		{[]byte{0x50, 0x4B, 0x03, 0x04}, ".docx", true},
		{[]byte{0x50, 0x4B, 0x05, 0x06}, ".zip", true},
		{[]byte{0x50, 0x4B}, ".zip", true},
		{[]byte{0x50}, "", false},
		{[]byte{0x00, 0x00, 0x00, 0x00}, "", false},
		{nil, "", false},
	}

	for _, c := range cases {
		ext, ok := tb.Identify(c.header)
		require.Equal(t, c.ok, ok, "header %X", c.header)
		require.Equal(t, c.ext, ext, "header %X", c.header)
	}
}

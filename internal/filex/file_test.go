package filex

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// smallest valid PNG header + IHDR chunk, enough for content sniffing
var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func TestEnsureParentDir_CreatesDirectory(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, ".verifynow", "session.db")

	require.NoError(t, EnsureParentDir(dbPath))

	fi, err := os.Stat(filepath.Dir(dbPath))
	require.NoError(t, err)
	require.True(t, fi.IsDir())

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), fi.Mode().Perm()&0o700)
	}
}

func TestEnsureParentDir_IdempotentAndBareName(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "data", "s.db")
	require.NoError(t, EnsureParentDir(p))
	require.NoError(t, EnsureParentDir(p))
	require.NoError(t, EnsureParentDir("session.db"))
}

func TestReadImage_PNG(t *testing.T) {
	p := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(p, pngHeader, 0o600))

	img, err := ReadImage(p)
	require.NoError(t, err)
	require.Equal(t, "photo.png", img.Name)
	require.Equal(t, "image/png", img.ContentType)
	require.Equal(t, pngHeader, img.Data)
}

func TestReadImage_RejectsText(t *testing.T) {
	p := filepath.Join(t.TempDir(), "notes.png")
	require.NoError(t, os.WriteFile(p, []byte("just some text, not pixels"), 0o600))

	_, err := ReadImage(p)
	require.ErrorIs(t, err, ErrNotAnImage)
}

func TestReadImage_TooLarge(t *testing.T) {
	p := filepath.Join(t.TempDir(), "big.png")
	data := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, MaxImageSize)...)
	require.NoError(t, os.WriteFile(p, data, 0o600))

	_, err := ReadImage(p)
	require.ErrorIs(t, err, ErrImageTooLarge)
}

func TestReadImage_Missing(t *testing.T) {
	_, err := ReadImage(filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
}

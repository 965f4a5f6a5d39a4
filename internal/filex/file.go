// Package filex holds filesystem helpers for the client: creating the data
// directory for the local store and loading images picked for verification.
package filex

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxImageSize bounds images read for verification.
const MaxImageSize = 10 << 20

var (
	ErrNotAnImage    = errors.New("file is not an image")
	ErrImageTooLarge = errors.New("image is too large")
)

// Image is an image file loaded into memory.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// EnsureParentDir creates the directory that will hold path (e.g. the SQLite
// file) with owner/group-only permissions. A bare file name needs no directory.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// ReadImage loads the file at path and checks, by content sniffing, that it is
// an image no larger than MaxImageSize.
func ReadImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("%w: detected %s", ErrNotAnImage, ct)
	}

	return &Image{Name: filepath.Base(path), ContentType: ct, Data: data}, nil
}

// Package bitmap writes rendered buffers as numbered BMP pictures.
package bitmap

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/image/bmp"

	"github.com/joshvictor1024/go-fractal/pkg/fractal"
)

// FileName is the name of picture index of a sequence: <stem><index>.bmp.
func FileName(stem string, index int) string {
	return fmt.Sprintf("%s%d.bmp", stem, index)
}

// Save writes buf to FileName(stem, index) and returns the path.
func Save(buf *fractal.Buffer, stem string, index int) (string, error) {
	if err := buf.Validate(); err != nil {
		return "", err
	}

	name := FileName(stem, index)
	f, err := os.Create(name)
	if err != nil {
		return "", fmt.Errorf("failed to create picture: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := bmp.Encode(w, buf); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}
	return name, nil
}

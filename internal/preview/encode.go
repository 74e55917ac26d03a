package preview

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// Format is a preview image format.
type Format string

const (
	FormatWebP Format = "webp"
	FormatTGA  Format = "tga"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatWebP, FormatTGA:
		return f, nil
	}
	return "", fmt.Errorf("preview: unknown format %q", s)
}

// Ext returns the file extension with the leading dot.
func (f Format) Ext() string { return "." + string(f) }

// Encode writes img to w.
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case FormatWebP:
		err = nativewebp.Encode(w, img, nil)
	case FormatTGA:
		err = tga.Encode(w, img)
	default:
		return fmt.Errorf("preview: unknown format %q", f)
	}
	if err != nil {
		return fmt.Errorf("preview: %s encode: %w", f, err)
	}
	return nil
}

// Save encodes img into path, creating parent directories.
func Save(path string, img image.Image, f Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Package capture writes framebuffer snapshots to PNG files.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshgradient/internal/logger"
)

// ErrSizeMismatch is returned when pixel data does not match the frame size.
var ErrSizeMismatch = errors.New("capture: pixel data size mismatch")

// PixelReader reads back the current framebuffer as RGBA, bottom row first.
type PixelReader interface {
	ReadPixels(width, height int) []byte
}

// Capturer names and writes screenshots.
type Capturer struct {
	dir    string
	prefix string
	now    func() time.Time
}

// New returns a capturer writing to dir. An empty dir means the working
// directory.
func New(dir, prefix string) *Capturer {
	if prefix == "" {
		prefix = "gradient"
	}
	return &Capturer{dir: dir, prefix: prefix, now: time.Now}
}

// Dir returns the output directory.
func (c *Capturer) Dir() string { return c.dir }

// Filename returns the path the next capture would be written to.
func (c *Capturer) Filename() string {
	name := fmt.Sprintf("%s_%s.png", c.prefix, c.now().Format("2006-01-02_15-04-05.000"))
	if c.dir == "" {
		return name
	}
	return filepath.Join(c.dir, name)
}

// Frame reads width by height pixels from r and saves them.
func (c *Capturer) Frame(r PixelReader, width, height int) (string, error) {
	return c.Pixels(r.ReadPixels(width, height), width, height)
}

// Pixels saves bottom-up RGBA data, flipping it so the PNG is top-down.
func (c *Capturer) Pixels(pixels []byte, width, height int) (string, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return "", fmt.Errorf("%w: %dx%d frame, %d bytes", ErrSizeMismatch, width, height, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return c.Image(img)
}

// Image saves img.
func (c *Capturer) Image(img image.Image) (string, error) {
	if c.dir != "" {
		if err := os.MkdirAll(c.dir, 0o755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := c.Filename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}

	logger.Named("capture").Info("screenshot saved", zap.String("file", filename))
	return filename, nil
}

// Package heightmap rasterizes the heights of a grid mesh into a grayscale image and encodes
// it as PNG or WebP.
package heightmap

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-wave/engine/grid"
	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

// Format is an image encoding.
type Format int

const (
	// FormatPNG encodes 16-bit grayscale PNG.
	FormatPNG Format = iota

	// FormatWebP encodes lossless WebP. WebP has no 16-bit gray, so heights are quantized to 8 bits.
	FormatWebP
)

// ErrUnknownFormat is returned for file extensions with no matching Format.
var ErrUnknownFormat = errors.New("unknown image format")

// String returns the file extension of the format without the dot.
func (f Format) String() string {
	if f == FormatWebP {
		return "webp"
	}
	return "png"
}

// ParseFormat picks the format from a file name's extension.
//
// Parameters:
//   - path: a file name ending in .png or .webp (case-insensitive)
//
// Returns:
//   - Format: the matching format
//   - error: ErrUnknownFormat for any other extension
func ParseFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".webp":
		return FormatWebP, nil
	}
	return FormatPNG, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// Render maps every vertex height to one pixel: column i is x, row j is y. Heights are
// normalized to the mesh's own range, so the lowest vertex is black and the highest white.
// A flat mesh renders mid-gray.
//
// Parameters:
//   - mesh: the mesh to rasterize
//
// Returns:
//   - *image.Gray16: a (Cols+1) x (Rows+1) image, or nil for a nil mesh
func Render(mesh *grid.Mesh) *image.Gray16 {
	if mesh == nil || len(mesh.Vertices) == 0 {
		return nil
	}

	lo, hi := float32(math.MaxFloat32), float32(-math.MaxFloat32)
	for i := range mesh.Vertices {
		y := mesh.Vertices[i].Position[1]
		lo = min(lo, y)
		hi = max(hi, y)
	}

	img := image.NewGray16(image.Rect(0, 0, mesh.Cols+1, mesh.Rows+1))
	span := hi - lo
	for i := 0; i <= mesh.Cols; i++ {
		for j := 0; j <= mesh.Rows; j++ {
			level := uint16(math.MaxUint16 / 2)
			if span > 0 {
				level = uint16(math.Round(float64((mesh.At(i, j).Position[1] - lo) / span * math.MaxUint16)))
			}
			img.SetGray16(i, j, color.Gray16{Y: level})
		}
	}
	return img
}

// Resize scales img to width x height with Catmull-Rom filtering.
//
// Parameters:
//   - img: the source image
//   - width, height: the target size in pixels
//
// Returns:
//   - *image.Gray16: the scaled image, or img itself if it already has that size
func Resize(img *image.Gray16, width, height int) *image.Gray16 {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	dst := image.NewGray16(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Encode writes img to w in the given format.
//
// Parameters:
//   - w: the destination
//   - img: the image to encode
//   - format: FormatPNG or FormatWebP
//
// Returns:
//   - error: an encoder error
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatWebP:
		// the WebP encoder works on RGBA samples
		rgba := image.NewNRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
		if err := nativewebp.Encode(w, rgba, nil); err != nil {
			return fmt.Errorf("WebP encode: %w", err)
		}
		return nil
	default:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("PNG encode: %w", err)
		}
		return nil
	}
}

// WriteFile encodes img to path, picking the format from the extension.
//
// Parameters:
//   - path: the output file; parent directories are created
//   - img: the image to write
//
// Returns:
//   - error: ErrUnknownFormat, or a file or encoder error
func WriteFile(path string, img image.Image) error {
	format, err := ParseFormat(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Capture builds a rows x cols mesh with gen, advances it to time t and renders it. When size
// is positive the image is scaled to size x size.
//
// Parameters:
//   - gen: the generator to build with
//   - rows, cols: the mesh resolution
//   - t: the animation time in seconds
//   - size: the output edge length in pixels, or 0 for one pixel per vertex
//
// Returns:
//   - *image.Gray16: the heightmap
//   - error: grid.ErrInvalidDimensions
func Capture(gen grid.Generator, rows, cols int, t float32, size int) (*image.Gray16, error) {
	if _, err := gen.Build(rows, cols); err != nil {
		return nil, err
	}
	gen.Update(t)

	img := Render(gen.Mesh())
	if size > 0 {
		img = Resize(img, size, size)
	}
	return img, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package imaging crops, trims, stitches, and palettizes rasterized manual
// pages into the single image shown on a docset page.
package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/draw"
)

// ErrNothingToStitch is returned by Stitch when every page was blank.
var ErrNothingToStitch = errors.New("no page images to stitch")

// Margins are pixel distances trimmed from each edge of a page render.
type Margins struct {
	Left, Top, Right, Bottom int
}

// DefaultMargins remove running headers, footers, and side gutters from a
// 600 dpi render downscaled by 4.
var DefaultMargins = Margins{Left: 80, Top: 130, Right: 100, Bottom: 160}

const (
	// DefaultTrimPad is the vertical padding kept around detected content.
	DefaultTrimPad = 15

	// DefaultColors is the palette size of the saved composite.
	DefaultColors = 16
)

// CropMargins returns a copy of img with m removed from each edge. Margins
// larger than the image yield an empty image.
func CropMargins(img image.Image, m Margins) *image.RGBA {
	b := img.Bounds()
	r := image.Rectangle{
		Min: image.Pt(b.Min.X+m.Left, b.Min.Y+m.Top),
		Max: image.Pt(b.Max.X-m.Right, b.Max.Y-m.Bottom),
	}
	return subImage(img, r.Intersect(b))
}

// ContentBounds returns the bounding box of non-background pixels: those
// whose inverted grayscale value is non-zero, i.e. anything not pure white.
func ContentBounds(img image.Image) (image.Rectangle, bool) {
	inked := func(x, y int) bool {
		return color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y != 255
	}
	if rgba, ok := img.(*image.RGBA); ok {
		inked = func(x, y int) bool {
			i := rgba.PixOffset(x, y)
			p := rgba.Pix[i : i+3 : i+3]
			return gray(p[0], p[1], p[2]) != 255
		}
	}

	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X, b.Min.Y
	found := false

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !inked(x, y) {
				continue
			}
			found = true
			minX, maxX = min(minX, x), max(maxX, x+1)
			minY, maxY = min(minY, y), max(maxY, y+1)
		}
	}
	if !found {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX, maxY), true
}

// gray is color.GrayModel applied to 8-bit channels.
func gray(r8, g8, b8 uint8) uint8 {
	r := uint32(r8) * 0x101
	g := uint32(g8) * 0x101
	b := uint32(b8) * 0x101
	return uint8((19595*r + 38470*g + 7471*b + 1<<15) >> 24)
}

// AutoTrim crops img vertically to its content plus pad pixels above and
// below, clamped to the image. The full width is kept. It reports false for a
// blank image.
func AutoTrim(img image.Image, pad int) (*image.RGBA, bool) {
	content, ok := ContentBounds(img)
	if !ok {
		return nil, false
	}
	b := img.Bounds()
	r := image.Rect(
		b.Min.X,
		max(b.Min.Y, content.Min.Y-pad),
		b.Max.X,
		min(b.Max.Y, content.Max.Y+pad),
	)
	return subImage(img, r), true
}

// Stitch concatenates imgs top to bottom. The composite is as wide as the
// narrowest image; widthMismatch reports whether the widths differed.
func Stitch(imgs []image.Image) (out *image.RGBA, widthMismatch bool, err error) {
	if len(imgs) == 0 {
		return nil, false, ErrNothingToStitch
	}

	width := imgs[0].Bounds().Dx()
	height := 0
	for _, img := range imgs {
		w := img.Bounds().Dx()
		if w != width {
			widthMismatch = true
		}
		width = min(width, w)
		height += img.Bounds().Dy()
	}

	out = image.NewRGBA(image.Rect(0, 0, width, height))
	y := 0
	for _, img := range imgs {
		b := img.Bounds()
		draw.Copy(out, image.Pt(0, y), img, image.Rect(b.Min.X, b.Min.Y, b.Min.X+width, b.Max.Y), draw.Src, nil)
		y += b.Dy()
	}
	return out, widthMismatch, nil
}

// Palettize reduces img to an adaptive palette of at most colors entries.
func Palettize(img image.Image, colors int) *image.Paletted {
	q := quantize.MedianCutQuantizer{}
	pal := q.Quantize(make(color.Palette, 0, colors), img)

	out := image.NewPaletted(img.Bounds(), pal)
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

// Load decodes a PNG file.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// SavePNG encodes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// subImage copies r of img into a new image whose origin is (0, 0).
func subImage(img image.Image, r image.Rectangle) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	if !r.Empty() {
		draw.Copy(out, image.Point{}, img, r, draw.Src, nil)
	}
	return out
}

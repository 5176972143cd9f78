package images

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// JPEGQuality is used when re-encoding normalized images
const JPEGQuality = 95

// DefaultSize is the square training resolution
var DefaultSize = image.Pt(128, 128)

// Tensor holds an RGB image with values normalized to [-1, 1], stored row-major, 3 channels per pixel
type Tensor struct {
	Width  int
	Height int
	Pix    []float32
}

// At returns channel c of the pixel at (x, y)
func (t *Tensor) At(x, y, c int) float32 {
	return t.Pix[(y*t.Width+x)*3+c]
}

// NewTensor maps an 8-bit image from [0, 255] to [-1, 1]
func NewTensor(img *image.RGBA) *Tensor {
	b := img.Bounds()
	t := &Tensor{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    make([]float32, 0, b.Dx()*b.Dy()*3),
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			off := img.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				t.Pix = append(t.Pix, float32(img.Pix[off+c])/127.5-1.0)
			}
		}
	}
	return t
}

// ToRGBA maps the tensor back to an opaque 8-bit image
func (t *Tensor) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			off := img.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				img.Pix[off+c] = denormalize(t.At(x, y, c))
			}
			img.Pix[off+3] = 0xff
		}
	}
	return img
}

func denormalize(v float32) uint8 {
	p := math.Round((float64(v) + 1.0) * 127.5)
	return uint8(math.Max(0, math.Min(255, p)))
}

// FitSize returns the dimensions that fit a w x h image inside size while preserving its aspect ratio
func FitSize(w, h int, size image.Point) (int, int) {
	imgRatio := float64(w) / float64(h)
	targetRatio := float64(size.X) / float64(size.Y)

	var nw, nh int
	if imgRatio > targetRatio {
		nw = size.X
		nh = int(math.Round(float64(size.X) / imgRatio))
	} else {
		nh = size.Y
		nw = int(math.Round(float64(size.Y) * imgRatio))
	}
	return clamp(nw, 1, size.X), clamp(nh, 1, size.Y)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// toRGB drops any alpha channel, keeping the straight color values
func toRGB(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			dst.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return dst
}

// Letterbox resizes src to fit size with a Lanczos filter and centers it on a black canvas
func Letterbox(src image.Image, size image.Point) *image.RGBA {
	b := src.Bounds()
	w, h := FitSize(b.Dx(), b.Dy(), size)
	resized := resize.Resize(uint(w), uint(h), toRGB(src), resize.Lanczos3)

	canvas := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	offset := image.Pt((size.X-w)/2, (size.Y-h)/2)
	draw.Draw(canvas, image.Rectangle{Min: offset, Max: offset.Add(image.Pt(w, h))}, resized, resized.Bounds().Min, draw.Src)
	return canvas
}

// Normalize letterboxes src to size and maps it to [-1, 1]
func Normalize(src image.Image, size image.Point) *Tensor {
	return NewTensor(Letterbox(src, size))
}

// Decode reads and decodes an image file
func Decode(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// NormalizeFile normalizes the image at srcPath and saves the 8-bit result as JPEG at dstPath
func NormalizeFile(srcPath, dstPath string, size image.Point) (*Tensor, error) {
	tensor, _, err := normalizeFile(srcPath, dstPath, size)
	return tensor, err
}

func normalizeFile(srcPath, dstPath string, size image.Point) (*Tensor, *image.RGBA, error) {
	src, err := Decode(srcPath)
	if err != nil {
		return nil, nil, err
	}

	tensor := Normalize(src, size)
	img := tensor.ToRGBA()
	if err := SaveJPEG(dstPath, img); err != nil {
		return nil, nil, err
	}
	return tensor, img, nil
}

// SaveJPEG encodes img at JPEGQuality
func SaveJPEG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}

	if err := jpeg.Encode(file, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode JPEG: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}
	return nil
}

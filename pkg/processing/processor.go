package processing

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/sticker-planer/pkg/types"
)

// ErrEmptyCrop is returned when a crop rectangle does not overlap the image
var ErrEmptyCrop = errors.New("empty crop rectangle")

// Processor handles image I/O and the pad/crop/resize steps of the pipeline
type Processor struct {
	resampler imaging.ResampleFilter
}

// NewProcessor creates a new image processor using Lanczos resampling
func NewProcessor() *Processor {
	return &Processor{resampler: imaging.Lanczos}
}

// LoadImage loads an image from a file path with WebP support.
// The decoded image is returned in its native pixel format so 16-bit alpha survives scanning.
func (p *Processor) LoadImage(path string) (image.Image, error) {
	// Try imaging.Open (registered decoders)
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	// Fallback: explicit WebP decode
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer f.Close()

	img, err := p.LoadImageFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// LoadImageFromReader decodes an image from a reader, trying registered decoders first
func (p *Processor) LoadImageFromReader(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// ValidateImage checks that an image has at least one pixel on each axis
func (p *Processor) ValidateImage(img image.Image) error {
	b := img.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return fmt.Errorf("image too small: %dx%d", b.Dx(), b.Dy())
	}
	return nil
}

// Pad centers img on a transparent canvas of the given size.
// Extra pixels are split evenly between opposite edges.
func (p *Processor) Pad(img image.Image, width, height int) *image.NRGBA {
	b := img.Bounds()
	if width == b.Dx() && height == b.Dy() {
		return imaging.Clone(img)
	}
	canvas := imaging.New(width, height, color.NRGBA{})
	return imaging.PasteCenter(canvas, img)
}

// Crop cuts the given rectangle out of img
func (p *Processor) Crop(img image.Image, rect image.Rectangle) (*image.NRGBA, error) {
	rect = rect.Add(img.Bounds().Min).Intersect(img.Bounds())
	if rect.Empty() {
		return nil, ErrEmptyCrop
	}
	return imaging.Crop(img, rect), nil
}

// Resize scales img to the bucket's target dimensions, target being the length of the fixed axis.
func (p *Processor) Resize(img image.Image, dar types.DesiredAspectRatio, target int) *image.NRGBA {
	w, h := dar.ResizeDimensions(target)
	return imaging.Resize(img, w, h, p.resampler)
}

// Apply runs pad, crop and resize for a plan
func (p *Processor) Apply(img image.Image, plan types.Plan, target int) (*image.NRGBA, error) {
	padded := p.Pad(img, plan.Target.ImageWidth, plan.Target.ImageHeight)

	cropped, err := p.Crop(padded, plan.Target.Rect())
	if err != nil {
		return nil, fmt.Errorf("cropping to %v: %w", plan.Target.Rect(), err)
	}

	return p.Resize(cropped, plan.Aspect, target), nil
}

// FormatFromPath returns the output format implied by the file extension
func FormatFromPath(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "jpeg":
		return "jpg"
	case "":
		return "png"
	default:
		return ext
	}
}

// SaveImage saves an image to a file with the specified format and quality.
// An empty format is derived from the file extension.
func (p *Processor) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	if format == "" {
		format = FormatFromPath(path)
	}

	switch strings.ToLower(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		opts := &webp.Options{Lossless: lossless, Quality: float32(quality)}
		if err := webp.Encode(f, img, opts); err != nil {
			f.Close()
			return fmt.Errorf("encoding webp: %w", err)
		}
		return f.Close()
	case "jpg", "jpeg":
		return p.encodeTo(path, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case "png":
		return p.encodeTo(path, img, imaging.PNG)
	default:
		f, err := imaging.FormatFromExtension(format)
		if err != nil {
			return fmt.Errorf("unsupported output format: %s", format)
		}
		return p.encodeTo(path, img, f)
	}
}

// encodeTo writes with an explicit format so the file name need not carry a matching extension
func (p *Processor) encodeTo(path string, img image.Image, format imaging.Format, opts ...imaging.EncodeOption) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := imaging.Encode(f, img, format, opts...); err != nil {
		f.Close()
		return fmt.Errorf("encoding %v: %w", format, err)
	}
	return f.Close()
}

// CreateDebugOverlay draws the content box and the crop window on a copy of img
func (p *Processor) CreateDebugOverlay(img image.Image, contentBox, cropBox image.Rectangle) *image.NRGBA {
	nrgba := imaging.Clone(img)
	w := nrgba.Bounds().Dx()
	h := nrgba.Bounds().Dy()

	green := color.NRGBA{0, 255, 0, 255}  // content box
	gold := color.NRGBA{255, 204, 0, 255} // crop box

	// ~0.4% of min side
	stroke := int(math.Max(1, 0.004*float64(min(w, h))))

	drawBox(nrgba, contentBox, green, stroke)
	if !cropBox.Empty() {
		drawBox(nrgba, cropBox, gold, stroke)
	}
	return nrgba
}

func drawBox(img *image.NRGBA, r image.Rectangle, c color.NRGBA, stroke int) {
	if r.Empty() {
		return
	}
	for s := 0; s < stroke; s++ {
		drawHLine(img, r.Min.Y+s, r.Min.X, r.Max.X, c)
		drawHLine(img, r.Max.Y-1-s, r.Min.X, r.Max.X, c)
		drawVLine(img, r.Min.X+s, r.Min.Y, r.Max.Y, c)
		drawVLine(img, r.Max.X-1-s, r.Min.Y, r.Max.Y, c)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	x0 = max(x0, 0)
	x1 = min(x1, img.Bounds().Dx())
	if x1 <= x0 {
		return
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	y0 = max(y0, 0)
	y1 = min(y1, img.Bounds().Dy())
	if y1 <= y0 {
		return
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}

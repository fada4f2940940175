package scanner

import (
	"image"

	"github.com/menta2k/sticker-planer/pkg/types"
)

// AlphaScanner finds the occupied region of an image by looking at its alpha channel.
// Any non-zero alpha counts as occupied.
type AlphaScanner struct{}

// New creates a new AlphaScanner
func New() *AlphaScanner {
	return &AlphaScanner{}
}

// alphaFunc reports whether the pixel at (x, y), relative to the image origin, is opaque
type alphaFunc func(x, y int) bool

// Scan returns the tightest bounding box containing every opaque pixel.
//
// Each edge is searched independently and the search stops at the first
// column or row holding an opaque pixel. An image without opaque pixels
// yields the degenerate box with all indices at 0.
func (s *AlphaScanner) Scan(img image.Image) types.BoundingBox {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	opaque := opaqueFunc(img)

	return types.BoundingBox{
		ImageWidth:  w,
		ImageHeight: h,
		Left:        scanLeft(opaque, w, h),
		Right:       scanRight(opaque, w, h),
		Top:         scanTop(opaque, w, h),
		Bottom:      scanBottom(opaque, w, h),
	}
}

func scanLeft(opaque alphaFunc, w, h int) int {
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if opaque(x, y) {
				return x
			}
		}
	}
	return 0
}

func scanRight(opaque alphaFunc, w, h int) int {
	for x := w - 1; x >= 0; x-- {
		for y := 0; y < h; y++ {
			if opaque(x, y) {
				return x
			}
		}
	}
	return 0
}

func scanTop(opaque alphaFunc, w, h int) int {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if opaque(x, y) {
				return y
			}
		}
	}
	return 0
}

func scanBottom(opaque alphaFunc, w, h int) int {
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			if opaque(x, y) {
				return y
			}
		}
	}
	return 0
}

// opaqueFunc picks a direct Pix lookup for the common RGBA layouts and falls
// back to the color model for everything else.
func opaqueFunc(img image.Image) alphaFunc {
	origin := img.Bounds().Min

	switch src := img.(type) {
	case *image.NRGBA:
		return pixAlpha(src.Pix, src.Stride, 4, 3, src.PixOffset(origin.X, origin.Y))
	case *image.RGBA:
		return pixAlpha(src.Pix, src.Stride, 4, 3, src.PixOffset(origin.X, origin.Y))
	case *image.NRGBA64:
		return func(x, y int) bool {
			i := src.PixOffset(origin.X+x, origin.Y+y)
			return src.Pix[i+6] != 0 || src.Pix[i+7] != 0
		}
	case *image.RGBA64:
		return func(x, y int) bool {
			i := src.PixOffset(origin.X+x, origin.Y+y)
			return src.Pix[i+6] != 0 || src.Pix[i+7] != 0
		}
	case *image.Alpha:
		return pixAlpha(src.Pix, src.Stride, 1, 0, src.PixOffset(origin.X, origin.Y))
	}

	return func(x, y int) bool {
		_, _, _, a := img.At(origin.X+x, origin.Y+y).RGBA()
		return a != 0
	}
}

func pixAlpha(pix []uint8, stride, bpp, channel, base int) alphaFunc {
	return func(x, y int) bool {
		return pix[base+y*stride+x*bpp+channel] != 0
	}
}

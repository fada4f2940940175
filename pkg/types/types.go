package types

import (
	"fmt"
	"image"
	"strings"
)

// TargetSize is the length of the fixed axis of every normalized sticker
const TargetSize = 512

// BoundingBox represents the occupied region of opaque pixels within a canvas.
// Left/Right/Top/Bottom are inclusive pixel indices.
type BoundingBox struct {
	ImageWidth  int `json:"image_width"`
	ImageHeight int `json:"image_height"`
	Left        int `json:"left"`
	Right       int `json:"right"`
	Top         int `json:"top"`
	Bottom      int `json:"bottom"`
}

// Width returns the horizontal extent of the content
func (b BoundingBox) Width() int {
	return b.Right - b.Left + 1
}

// Height returns the vertical extent of the content
func (b BoundingBox) Height() int {
	return b.Bottom - b.Top + 1
}

// HorizontalMargin returns the total number of empty columns around the content
func (b BoundingBox) HorizontalMargin() int {
	return b.ImageWidth - b.Width()
}

// VerticalMargin returns the total number of empty rows around the content
func (b BoundingBox) VerticalMargin() int {
	return b.ImageHeight - b.Height()
}

// Rect returns the box as a half-open rectangle suitable for cropping
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right+1, b.Bottom+1)
}

// Canvas returns the rectangle of the whole canvas the box was measured against
func (b BoundingBox) Canvas() image.Rectangle {
	return image.Rect(0, 0, b.ImageWidth, b.ImageHeight)
}

// IsEmpty reports whether the box is the degenerate all-zero box produced for
// images without any opaque pixel.
func (b BoundingBox) IsEmpty() bool {
	return b.Left == 0 && b.Right == 0 && b.Top == 0 && b.Bottom == 0
}

// WithCanvas returns a copy of the box measured against a different canvas size
func (b BoundingBox) WithCanvas(width, height int) BoundingBox {
	b.ImageWidth = width
	b.ImageHeight = height
	return b
}

// WithBounds returns a copy of the box with new content bounds
func (b BoundingBox) WithBounds(left, top, right, bottom int) BoundingBox {
	b.Left = left
	b.Top = top
	b.Right = right
	b.Bottom = bottom
	return b
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("%dx%d[%d..%d, %d..%d]", b.ImageWidth, b.ImageHeight, b.Left, b.Right, b.Top, b.Bottom)
}

// DesiredAspectRatio is the output proportion bucket of a sticker
type DesiredAspectRatio int

const (
	Square DesiredAspectRatio = iota
	Wide
	Tall
)

type resizeTarget struct {
	name          string
	width, height int
}

// A zero dimension means "auto": derived from the other one preserving aspect ratio.
var resizeTargets = map[DesiredAspectRatio]resizeTarget{
	Square: {"square", TargetSize, TargetSize},
	Wide:   {"wide", TargetSize, 0},
	Tall:   {"tall", 0, TargetSize},
}

// ResizeWidth returns the output width, 0 meaning auto
func (d DesiredAspectRatio) ResizeWidth() int {
	return resizeTargets[d].width
}

// ResizeHeight returns the output height, 0 meaning auto
func (d DesiredAspectRatio) ResizeHeight() int {
	return resizeTargets[d].height
}

// ResizeDimensions scales the lookup table to a different target size
func (d DesiredAspectRatio) ResizeDimensions(target int) (int, int) {
	return d.ResizeWidth() * target / TargetSize, d.ResizeHeight() * target / TargetSize
}

func (d DesiredAspectRatio) String() string {
	if t, ok := resizeTargets[d]; ok {
		return t.name
	}
	return fmt.Sprintf("DesiredAspectRatio(%d)", int(d))
}

// MarshalText implements encoding.TextMarshaler
func (d DesiredAspectRatio) MarshalText() ([]byte, error) {
	if _, ok := resizeTargets[d]; !ok {
		return nil, fmt.Errorf("unknown aspect ratio %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *DesiredAspectRatio) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for k, v := range resizeTargets {
		if v.name == name {
			*d = k
			return nil
		}
	}
	return fmt.Errorf("unknown aspect ratio %q", text)
}

// Plan is the outcome of planning a single sticker
type Plan struct {
	Source BoundingBox        `json:"source"`
	Aspect DesiredAspectRatio `json:"aspect"`
	// Target carries the padded canvas size and the crop window within it.
	Target BoundingBox `json:"target"`
}

// Result contains the outcome of processing one input file
type Result struct {
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`
	Plan   *Plan  `json:"plan,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Error  string `json:"error,omitempty"`
}

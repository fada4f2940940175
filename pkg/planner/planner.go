package planner

import (
	"github.com/menta2k/sticker-planer/pkg/types"
)

// Planner classifies sticker content and plans the padding and crop needed to
// reach the matching aspect ratio with even margins.
type Planner struct {
	config Config
}

// Config holds configuration for aspect planning
type Config struct {
	// ToleranceNum/ToleranceDen is the ratio one side must exceed the other
	// by before the content stops being square.
	ToleranceNum int
	ToleranceDen int
	// MinPaddingDivisor sets the padding floor to a fraction of the canvas side.
	MinPaddingDivisor int
}

// DefaultConfig returns the 10% tolerance and 5% padding floor
func DefaultConfig() Config {
	return Config{
		ToleranceNum:      11,
		ToleranceDen:      10,
		MinPaddingDivisor: 20,
	}
}

// New creates a new Planner with default configuration
func New() *Planner {
	return &Planner{config: DefaultConfig()}
}

// NewWithConfig creates a new Planner with custom configuration
func NewWithConfig(config Config) *Planner {
	return &Planner{config: config}
}

// Classify picks the aspect bucket from the shape of the content.
// Comparisons are strict, so content exactly at the tolerance is Square.
func (p *Planner) Classify(bbox types.BoundingBox) types.DesiredAspectRatio {
	w, h := bbox.Width(), bbox.Height()
	num, den := p.config.ToleranceNum, p.config.ToleranceDen

	switch {
	case w*den > h*num:
		return types.Wide
	case h*den > w*num:
		return types.Tall
	default:
		return types.Square
	}
}

// PlanCrop derives the padded canvas and the crop window within it.
// The canvas grows by the same amount on both sides of an axis, so the far
// edge indices move by twice the padding while near edges stay put.
func (p *Planner) PlanCrop(bbox types.BoundingBox, dar types.DesiredAspectRatio) types.BoundingBox {
	switch dar {
	case types.Wide:
		dy := max(bbox.HorizontalMargin()/2, p.floor(bbox.ImageWidth))
		out := bbox.WithCanvas(bbox.ImageWidth, bbox.ImageHeight+2*dy)
		return out.WithBounds(0, bbox.Top, bbox.ImageWidth-1, bbox.Bottom+2*dy)
	case types.Tall:
		dx := max(bbox.VerticalMargin()/2, p.floor(bbox.ImageHeight))
		out := bbox.WithCanvas(bbox.ImageWidth+2*dx, bbox.ImageHeight)
		return out.WithBounds(bbox.Left, 0, bbox.Right+2*dx, bbox.ImageHeight-1)
	default:
		margin := (bbox.HorizontalMargin() + bbox.VerticalMargin()) / 2
		d := max(margin/2, p.floor(bbox.ImageHeight))
		out := bbox.WithCanvas(bbox.ImageWidth+2*d, bbox.ImageHeight+2*d)
		return out.WithBounds(0, 0, out.ImageWidth-1, out.ImageHeight-1)
	}
}

// Plan classifies the content and plans its crop in one step
func (p *Planner) Plan(bbox types.BoundingBox) types.Plan {
	dar := p.Classify(bbox)
	return types.Plan{
		Source: bbox,
		Aspect: dar,
		Target: p.PlanCrop(bbox, dar),
	}
}

func (p *Planner) floor(side int) int {
	if p.config.MinPaddingDivisor <= 0 {
		return 0
	}
	return side / p.config.MinPaddingDivisor
}

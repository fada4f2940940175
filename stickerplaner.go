// Package stickerplaner normalizes sticker images with transparent backgrounds
// to a fixed 512px long axis while keeping the subject centered with even margins.
//
// Basic usage:
//
//	sp := stickerplaner.New()
//	results := sp.ProcessFiles([]string{"cat.png", "dog.png"})
//	for _, r := range results {
//		fmt.Println(r.Input, "->", r.Output, r.Error)
//	}
//
// Each sticker goes through four steps:
//
// 1. Scanner (pkg/scanner): finds the bounding box of pixels with non-zero alpha
// 2. Planner (pkg/planner): classifies the content as square, wide or tall and
// plans a padded canvas plus a crop window
// 3. Processing (pkg/processing): pads, crops and resizes with the imaging library
// 4. The result is written to a StickerPlaner directory next to the input
package stickerplaner

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/menta2k/sticker-planer/internal/log"
	"github.com/menta2k/sticker-planer/internal/utils"
	"github.com/menta2k/sticker-planer/pkg/planner"
	"github.com/menta2k/sticker-planer/pkg/processing"
	"github.com/menta2k/sticker-planer/pkg/scanner"
	"github.com/menta2k/sticker-planer/pkg/types"
)

// Version of the sticker planer library
const Version = "1.0.0"

// DefaultSubdir is the directory, next to each input, that receives the output
const DefaultSubdir = "StickerPlaner"

// Options controls where and how normalized stickers are written
type Options struct {
	TargetSize int
	Subdir     string
	Format     string // empty keeps the input extension
	Quality    int
	Lossless   bool
	Debug      bool   // also write an overlay of the content box and crop window
}

// DefaultOptions returns 512px output into StickerPlaner/ keeping the input format
func DefaultOptions() Options {
	return Options{
		TargetSize: types.TargetSize,
		Subdir:     DefaultSubdir,
		Quality:    90,
		Lossless:   true,
	}
}

// StickerPlaner wires scanning, planning and processing together
type StickerPlaner struct {
	scanner   *scanner.AlphaScanner
	planner   *planner.Planner
	processor *processing.Processor
	options   Options
}

// New creates a new StickerPlaner with default configuration
func New() *StickerPlaner {
	return NewWithConfig(planner.DefaultConfig(), DefaultOptions())
}

// NewWithConfig creates a new StickerPlaner with custom configuration
func NewWithConfig(plannerConfig planner.Config, options Options) *StickerPlaner {
	return &StickerPlaner{
		scanner:   scanner.New(),
		planner:   planner.NewWithConfig(plannerConfig),
		processor: processing.NewProcessor(),
		options:   options,
	}
}

// Analyze scans img and plans its normalization without touching any pixels
func (sp *StickerPlaner) Analyze(img image.Image) types.Plan {
	return sp.planner.Plan(sp.scanner.Scan(img))
}

// Normalize pads, crops and resizes img according to its plan
func (sp *StickerPlaner) Normalize(img image.Image) (*image.NRGBA, types.Plan, error) {
	if err := sp.processor.ValidateImage(img); err != nil {
		return nil, types.Plan{}, err
	}

	plan := sp.Analyze(img)
	out, err := sp.processor.Apply(img, plan, sp.options.TargetSize)
	if err != nil {
		return nil, plan, err
	}
	return out, plan, nil
}

// OutputPath returns where the normalized copy of inputPath is written
func (sp *StickerPlaner) OutputPath(inputPath string) string {
	return utils.OutputPath(inputPath, sp.options.Subdir, sp.options.Format)
}

// ProcessFile loads, normalizes and saves a single sticker
func (sp *StickerPlaner) ProcessFile(inputPath string) (types.Result, error) {
	result := types.Result{Input: inputPath}

	img, err := sp.processor.LoadImage(inputPath)
	if err != nil {
		return sp.fail(result, fmt.Errorf("failed to load image: %w", err))
	}

	out, plan, err := sp.Normalize(img)
	if err != nil {
		return sp.fail(result, fmt.Errorf("failed to normalize %s: %w", inputPath, err))
	}
	result.Plan = &plan
	if plan.Source.IsEmpty() {
		log.Debugf("%s: no opaque pixels found", inputPath)
	}

	outputPath := sp.OutputPath(inputPath)
	if err := utils.EnsureDir(filepath.Dir(outputPath)); err != nil {
		return sp.fail(result, fmt.Errorf("failed to create output directory: %w", err))
	}

	if err := sp.processor.SaveImage(out, outputPath, sp.options.Format, sp.options.Quality, sp.options.Lossless); err != nil {
		return sp.fail(result, fmt.Errorf("failed to save %s: %w", outputPath, err))
	}

	result.Output = outputPath
	result.Width = out.Bounds().Dx()
	result.Height = out.Bounds().Dy()

	if sp.options.Debug {
		if err := sp.saveDebugOverlay(img, plan, outputPath); err != nil {
			log.Printf("debug overlay for %s failed: %v", inputPath, err)
		}
	}

	return result, nil
}

// ProcessFiles processes every path in order. A failing file is logged and
// recorded in its result; the remaining files are still processed.
func (sp *StickerPlaner) ProcessFiles(paths []string) []types.Result {
	results := make([]types.Result, 0, len(paths))
	for _, path := range paths {
		result, err := sp.ProcessFile(path)
		if err != nil {
			log.Printf("process %s failed: %v", path, err)
		} else {
			log.Printf("wrote %s (%s, %dx%d)", result.Output, result.Plan.Aspect, result.Width, result.Height)
		}
		results = append(results, result)
	}
	return results
}

func (sp *StickerPlaner) fail(result types.Result, err error) (types.Result, error) {
	result.Error = err.Error()
	return result, err
}

// saveDebugOverlay draws the content box and crop window on the padded canvas
func (sp *StickerPlaner) saveDebugOverlay(img image.Image, plan types.Plan, outputPath string) error {
	padded := sp.processor.Pad(img, plan.Target.ImageWidth, plan.Target.ImageHeight)
	offset := image.Pt(
		(plan.Target.ImageWidth-plan.Source.ImageWidth)/2,
		(plan.Target.ImageHeight-plan.Source.ImageHeight)/2,
	)
	overlay := sp.processor.CreateDebugOverlay(padded, plan.Source.Rect().Add(offset), plan.Target.Rect())

	ext := filepath.Ext(outputPath)
	dbgPath := strings.TrimSuffix(outputPath, ext) + "_debug.png"
	if err := sp.processor.SaveImage(overlay, dbgPath, "png", 0, false); err != nil {
		return err
	}
	log.Printf("wrote %s", dbgPath)
	return nil
}

// WriteReport saves the results as indented JSON
func WriteReport(results []types.Result, path string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}

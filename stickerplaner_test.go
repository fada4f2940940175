package stickerplaner

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/sticker-planer/pkg/planner"
	"github.com/menta2k/sticker-planer/pkg/scanner"
	"github.com/menta2k/sticker-planer/pkg/types"
)

// createTestImage creates a transparent sticker with an opaque subject
func createTestImage(width, height int, subject image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := subject.Min.Y; y < subject.Max.Y; y++ {
		for x := subject.Min.X; x < subject.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 128, 0, 255})
		}
	}
	return img
}

func writeTestImage(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, imaging.Save(img, path))
	return path
}

func TestNew(t *testing.T) {
	sp := New()
	require.NotNil(t, sp)
	assert.NotNil(t, sp.scanner)
	assert.NotNil(t, sp.planner)
	assert.NotNil(t, sp.processor)
	assert.Equal(t, DefaultOptions(), sp.options)
}

func TestNormalizeFullBleedWide(t *testing.T) {
	sp := New()
	img := createTestImage(200, 100, image.Rect(0, 0, 200, 100))

	out, plan, err := sp.Normalize(img)
	require.NoError(t, err)

	assert.Equal(t, types.Wide, plan.Aspect)
	assert.Equal(t, types.BoundingBox{ImageWidth: 200, ImageHeight: 100, Left: 0, Right: 199, Top: 0, Bottom: 99}, plan.Source)
	assert.Equal(t, 120, plan.Target.ImageHeight)
	assert.Equal(t, 512, out.Bounds().Dx())
	assert.Equal(t, 307, out.Bounds().Dy())
}

func TestNormalizeCenteredSquare(t *testing.T) {
	sp := New()
	img := createTestImage(100, 100, image.Rect(25, 25, 75, 75))

	out, plan, err := sp.Normalize(img)
	require.NoError(t, err)

	assert.Equal(t, types.Square, plan.Aspect)
	assert.Equal(t, types.BoundingBox{ImageWidth: 150, ImageHeight: 150, Left: 0, Right: 149, Top: 0, Bottom: 149}, plan.Target)
	assert.Equal(t, image.Rect(0, 0, 512, 512), out.Bounds())

	// subject stays centered
	box := scanner.New().Scan(out)
	assert.InDelta(t, box.Left, 511-box.Right, 1)
	assert.InDelta(t, box.Top, 511-box.Bottom, 1)
}

func TestNormalizeTall(t *testing.T) {
	sp := New()
	img := createTestImage(100, 200, image.Rect(0, 0, 100, 200))

	out, plan, err := sp.Normalize(img)
	require.NoError(t, err)

	assert.Equal(t, types.Tall, plan.Aspect)
	assert.Equal(t, 307, out.Bounds().Dx())
	assert.Equal(t, 512, out.Bounds().Dy())
}

func TestNormalizeFullyTransparent(t *testing.T) {
	sp := New()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 32))

	out, plan, err := sp.Normalize(img)
	require.NoError(t, err)

	assert.True(t, plan.Source.IsEmpty())
	assert.Equal(t, types.Square, plan.Aspect)
	assert.Equal(t, image.Rect(0, 0, 512, 512), out.Bounds())
}

func TestNormalizeIsNotIdempotent(t *testing.T) {
	sp := New()
	img := createTestImage(100, 100, image.Rect(25, 25, 75, 75))

	first, firstPlan, err := sp.Normalize(img)
	require.NoError(t, err)
	second, secondPlan, err := sp.Normalize(first)
	require.NoError(t, err)

	assert.Equal(t, first.Bounds(), second.Bounds())
	assert.NotEqual(t, firstPlan.Target, secondPlan.Target)

	s := scanner.New()
	assert.Less(t, s.Scan(second).Width(), s.Scan(first).Width(), "subject shrinks on every pass")
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	input := writeTestImage(t, dir, "cat.png", createTestImage(200, 100, image.Rect(0, 0, 200, 100)))

	result, err := New().ProcessFile(input)
	require.NoError(t, err)

	want := filepath.Join(dir, "StickerPlaner", "cat.png")
	assert.Equal(t, want, result.Output)
	assert.Empty(t, result.Error)
	require.NotNil(t, result.Plan)
	assert.Equal(t, types.Wide, result.Plan.Aspect)

	saved, err := imaging.Open(want)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 512, 307), saved.Bounds())
}

func TestProcessFileKeepsSixteenBitAlpha(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA64(image.Rect(0, 0, 20, 20))
	img.SetNRGBA64(5, 5, color.NRGBA64{R: 0xffff, G: 0x8000, A: 0xffff})
	// rounds to zero at 8 bits but is still opaque
	img.SetNRGBA64(15, 12, color.NRGBA64{R: 0xffff, G: 0x8000, A: 200})

	input := filepath.Join(dir, "faint.png")
	f, err := os.Create(input)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	result, err := New().ProcessFile(input)
	require.NoError(t, err)
	require.NotNil(t, result.Plan)

	assert.Equal(t, types.BoundingBox{ImageWidth: 20, ImageHeight: 20, Left: 5, Right: 15, Top: 5, Bottom: 12}, result.Plan.Source)
	assert.Equal(t, New().Analyze(img).Source, result.Plan.Source)
}

func TestProcessFileWebPWithDebug(t *testing.T) {
	dir := t.TempDir()
	input := writeTestImage(t, dir, "dog.png", createTestImage(60, 120, image.Rect(10, 10, 50, 110)))

	opts := DefaultOptions()
	opts.Format = "webp"
	opts.Debug = true
	sp := NewWithConfig(planner.DefaultConfig(), opts)

	result, err := sp.ProcessFile(input)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "StickerPlaner", "dog.webp"), result.Output)
	assert.Equal(t, 512, result.Height)
	assert.FileExists(t, result.Output)
	assert.FileExists(t, filepath.Join(dir, "StickerPlaner", "dog_debug.png"))

	saved, err := sp.processor.LoadImage(result.Output)
	require.NoError(t, err)
	assert.Equal(t, 512, saved.Bounds().Dy())
}

func TestProcessFileErrors(t *testing.T) {
	dir := t.TempDir()
	sp := New()

	result, err := sp.ProcessFile(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
	assert.NotEmpty(t, result.Error)
	assert.Empty(t, result.Output)

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("definitely not a png"), 0o644))
	_, err = sp.ProcessFile(bad)
	assert.Error(t, err)
}

func TestProcessFilesContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeTestImage(t, dir, "good.png", createTestImage(50, 50, image.Rect(5, 5, 45, 45)))
	missing := filepath.Join(dir, "missing.png")

	results := New().ProcessFiles([]string{missing, good})

	require.Len(t, results, 2)
	assert.NotEmpty(t, results[0].Error)
	assert.Empty(t, results[1].Error)
	assert.FileExists(t, filepath.Join(dir, "StickerPlaner", "good.png"))
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	good := writeTestImage(t, dir, "good.png", createTestImage(50, 50, image.Rect(5, 5, 45, 45)))
	results := New().ProcessFiles([]string{good})

	path := filepath.Join(dir, "report.json")
	require.NoError(t, WriteReport(results, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var back []types.Result
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 1)
	assert.Equal(t, results[0].Output, back[0].Output)
	assert.Equal(t, types.Square, back[0].Plan.Aspect)
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
	assert.NotEmpty(t, GetVersion())
}

func BenchmarkNormalize(b *testing.B) {
	sp := New()
	img := createTestImage(1024, 768, image.Rect(200, 150, 800, 600))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sp.Normalize(img)
	}
}

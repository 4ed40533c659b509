package engine

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
)

// PdftoppmRasterizer renders pages through poppler's pdftoppm.
type PdftoppmRasterizer struct {
	bin    string
	runner Runner
}

func NewPdftoppmRasterizer(bin string, runner Runner) *PdftoppmRasterizer {
	if bin == "" {
		bin = "pdftoppm"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &PdftoppmRasterizer{bin: bin, runner: runner}
}

func (r *PdftoppmRasterizer) Rasterize(ctx context.Context, path string, page, dpi int) (image.Image, error) {
	tmpDir, err := os.MkdirTemp("", "stmt-pp-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	p := fmt.Sprintf("%d", page)
	// pdftoppm -r 300 -gray -png -f N -l N <in.pdf> <tmp/page>
	_, err = r.runner.Run(ctx, r.bin, "-r", fmt.Sprintf("%d", dpi), "-gray", "-png", "-f", p, "-l", p, path, prefix)
	if err != nil {
		return nil, fmt.Errorf("rasterize page %d: %w", page, err)
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no image for page %d", page)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode page %d: %w", page, err)
	}
	return img, nil
}

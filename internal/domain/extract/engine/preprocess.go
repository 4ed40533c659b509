package engine

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"

	"github.com/disintegration/imaging"
)

const (
	thresholdWindow = 31
	thresholdOffset = 10
	maxSkewDegrees  = 3.0
	skewStepDegrees = 0.25
	minSkewDegrees  = 0.5
)

// Preprocess prepares a page image for recognition: grayscale, adaptive
// threshold, 3x3 median denoise, and deskew when the estimated angle is
// above half a degree.
func Preprocess(img image.Image) *image.Gray {
	bin := AdaptiveThreshold(toGray(imaging.Grayscale(img)), thresholdWindow, thresholdOffset)
	clean := MedianDenoise(bin)
	if angle := EstimateSkew(clean); math.Abs(angle) > minSkewDegrees {
		return Deskew(clean, angle)
	}
	return clean
}

// Deskew rotates text tilted by angle degrees back to horizontal and crops
// to the original size. Uncovered corners are white.
func Deskew(g *image.Gray, angle float64) *image.Gray {
	b := g.Bounds()
	rotated := imaging.Rotate(g, angle, color.White)
	return toGray(imaging.CropCenter(rotated, b.Dx(), b.Dy()))
}

func toGray(img image.Image) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

// AdaptiveThreshold binarizes against the local mean over a square window,
// computed with an integral image.
func AdaptiveThreshold(g *image.Gray, window, offset int) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	integral := make([]int64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var row int64
		for x := 0; x < w; x++ {
			row += int64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + row
		}
	}

	half := window / 2
	out := image.NewGray(b)
	for y := 0; y < h; y++ {
		y0, y1 := max(0, y-half), min(h-1, y+half)
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-half), min(w-1, x+half)
			area := int64((x1 - x0 + 1) * (y1 - y0 + 1))
			sum := integral[(y1+1)*(w+1)+x1+1] - integral[y0*(w+1)+x1+1] -
				integral[(y1+1)*(w+1)+x0] + integral[y0*(w+1)+x0]
			v := int64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			if v*area < sum-int64(offset)*area {
				out.SetGray(b.Min.X+x, b.Min.Y+y, color.Gray{Y: 0})
			} else {
				out.SetGray(b.Min.X+x, b.Min.Y+y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

// MedianDenoise applies a 3x3 median filter.
func MedianDenoise(g *image.Gray) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(b)
	var win [9]uint8
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					px, py := x+dx, y+dy
					if px < b.Min.X || px >= b.Max.X || py < b.Min.Y || py >= b.Max.Y {
						continue
					}
					win[n] = g.GrayAt(px, py).Y
					n++
				}
			}
			s := win[:n]
			sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
			out.SetGray(x, y, color.Gray{Y: s[n/2]})
		}
	}
	return out
}

// EstimateSkew returns the text angle in degrees using projection profiles:
// the angle whose sheared row histogram of dark pixels has the highest
// variance wins.
func EstimateSkew(g *image.Gray) float64 {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	type point struct{ x, y int }
	var dark []point
	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x += 2 {
			if g.GrayAt(b.Min.X+x, b.Min.Y+y).Y < 128 {
				dark = append(dark, point{x, y})
			}
		}
	}
	if len(dark) == 0 {
		return 0
	}

	best, bestScore := 0.0, -1.0
	for a := -maxSkewDegrees; a <= maxSkewDegrees+1e-9; a += skewStepDegrees {
		t := math.Tan(a * math.Pi / 180)
		offset := int(math.Abs(t)*float64(w)) + 1
		hist := make([]float64, h+2*offset)
		for _, p := range dark {
			row := p.y - int(math.Round(float64(p.x)*t)) + offset
			if row >= 0 && row < len(hist) {
				hist[row]++
			}
		}
		if score := variance(hist); score > bestScore {
			best, bestScore = a, score
		}
	}
	return best
}

func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum, sq float64
	for _, x := range xs {
		sum += x
		sq += x * x
	}
	n := float64(len(xs))
	mean := sum / n
	return sq/n - mean*mean
}
